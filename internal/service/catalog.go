package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Images *storage.Images
	Events mykafka.Publisher

	// Index and Search are nil when no search cluster is configured.
	Index  search.Indexer
	Search search.Searcher
}

func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx, strings.TrimSpace(category))
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, err
}

func validSpecifications(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if !json.Valid(raw) {
		return fmt.Errorf("%w: specifications must be valid JSON", ErrValidation)
	}
	return nil
}

// CreateProduct stores the optional image first and removes it again if the insert fails.
func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest, image *multipart.FileHeader) (*models.Product, error) {
	l := logging.FromContext(ctx).With("service", "catalog_create")

	name := strings.TrimSpace(req.Name)
	if name == "" || req.Price == nil {
		return nil, fmt.Errorf("%w: name and price are required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}
	if stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	if err := validSpecifications(req.Specifications); err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:        name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       stock,
		ImageURL:    req.ImageURL,
		Category:    strings.TrimSpace(req.Category),
	}
	if len(req.Specifications) > 0 {
		prod.Specifications = datatypes.JSON(req.Specifications)
	}

	var imagePath string
	if image != nil {
		if s.Images == nil {
			return nil, fmt.Errorf("%w: image uploads are disabled", ErrValidation)
		}
		url, path, err := s.Images.Save(image)
		if err != nil {
			if errors.Is(err, storage.ErrImageTooLarge) || errors.Is(err, storage.ErrUnsupportedType) {
				return nil, fmt.Errorf("%w: %v", ErrValidation, err)
			}
			return nil, err
		}
		prod.ImageURL = &url
		imagePath = path
	}

	if _, err := s.Repo.CreateProduct(ctx, prod); err != nil {
		if imagePath != "" {
			if rmErr := s.Images.Remove(imagePath); rmErr != nil {
				l.Warn("image_cleanup_failed", "path", imagePath, "error", rmErr)
			}
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.afterWrite(ctx, *prod, "product_created")
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	if req.Stock != nil && *req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	if err := validSpecifications(req.Specifications); err != nil {
		return nil, err
	}

	prod, err := s.Repo.PatchProduct(ctx, id, req)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("patch product: %w", err)
	}

	s.afterWrite(ctx, *prod, "product_updated")
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	err := s.Repo.DeleteProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("unindex_product_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProducts, fmt.Sprint(id), "product_deleted", map[string]uint{"id": id})
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, p models.Product, event string) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("index_product_failed", "product_id", p.ID, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicProducts, fmt.Sprint(p.ID), event, p)
}

// SearchProducts queries the search cluster and falls back to SQL when it is absent or failing.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (*transport.SearchResult, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: q is required", ErrValidation)
	}
	page, size = util.Page(page, size)
	offset, limit := util.Calculate(page, size)

	if s.Search != nil {
		total, items, err := s.Search.Search(ctx, q, offset, limit)
		if err == nil {
			return &transport.SearchResult{Items: items, Total: total, Page: page, Size: size}, nil
		}
		logging.FromContext(ctx).Warn("es_search_failed", "reason", "falling back to sql", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return &transport.SearchResult{Items: items, Total: total, Page: page, Size: size}, nil
}
