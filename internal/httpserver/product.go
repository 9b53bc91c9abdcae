package httpserver

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	items, err := h.Svc.ListProducts(ctx, c.QueryParam("category"))
	if err != nil {
		l.Error("get_products_error", "status", 500, "error", err)
		return internalError("cannot list products", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_failed", "status", 404, "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("get_product_failed", "status", 500, "error", err)
		return internalError("cannot get product", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
		}
		l.Error("search_error", "status", 500, "error", err)
		return internalError("search failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

// bindCreateProduct accepts JSON or a multipart form with an optional "image" file.
func bindCreateProduct(c echo.Context) (transport.CreateProductRequest, *multipart.FileHeader, error) {
	var req transport.CreateProductRequest
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		err := c.Bind(&req)
		return req, nil, err
	}

	req.Name = c.FormValue("name")
	req.Category = c.FormValue("category")
	if v := c.FormValue("description"); v != "" {
		req.Description = &v
	}
	if v := c.FormValue("image_url"); v != "" {
		req.ImageURL = &v
	}
	if v := c.FormValue("price"); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return req, nil, errors.New("price must be a number")
		}
		req.Price = &p
	}
	if v := c.FormValue("stock"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, nil, errors.New("stock must be an integer")
		}
		req.Stock = &n
	}
	if v := c.FormValue("specifications"); v != "" {
		req.Specifications = json.RawMessage(v)
	}

	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, err
	}
	return req, file, nil
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	req, image, err := bindCreateProduct(c)
	if err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body: "+err.Error())
	}

	prod, err := h.Svc.CreateProduct(ctx, req, image)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("product_create_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
		return internalError("cannot create product", err)
	}

	l.Info("product_created", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "product created",
		"productId": prod.ID,
		"product":   prod,
	})
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "patch_product")

	id, err := parseID(c)
	if err != nil {
		l.Warn("product_patch_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_patch_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotFound):
			l.Warn("product_patch_error", "status", 404, "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		default:
			l.Error("product_patch_error", "status", 500, "error", err)
			return internalError("cannot update product", err)
		}
	}
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_product")

	id, err := parseID(c)
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("product_delete_error", "status", 404, "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("product_delete_error", "status", 500, "error", err)
		return internalError("cannot delete product", err)
	}

	l.Info("product_deleted", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
