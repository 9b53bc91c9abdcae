package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const customerOrderLimit = 50

type OrderService struct {
	Repo   *repo.GormRepo
	Events mykafka.Publisher
}

// PlaceOrder validates the cart against live stock, prices it from the catalog and
// commits order, items and stock decrements together.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uint, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("service", "order_place", "user_id", userID)

	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		return nil, fmt.Errorf("%w: shipping_address", ErrMissingField)
	}
	payment := strings.TrimSpace(req.PaymentMethod)
	if payment == "" {
		return nil, fmt.Errorf("%w: payment_method", ErrMissingField)
	}

	lines := make([]transport.CreateOrderItem, len(req.Items))
	requested := make(map[uint]int, len(req.Items))
	for i, raw := range req.Items {
		it := raw.Normalize()
		if it.ProductID == 0 {
			return nil, fmt.Errorf("%w: items[%d].product_id required", ErrValidation, i)
		}
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: items[%d].quantity must be > 0", ErrValidation, i)
		}
		if it.Price != nil && it.Price.IsNegative() {
			return nil, fmt.Errorf("%w: items[%d].price must be >= 0", ErrValidation, i)
		}
		lines[i] = it
		requested[it.ProductID] += it.Quantity
	}

	ids := make([]uint, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	catalog, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOrderPersistence, err)
	}
	for _, id := range ids {
		p, ok := catalog[id]
		if !ok {
			return nil, productNotFound(id)
		}
		if p.Stock < requested[id] {
			return nil, &InsufficientStockError{ProductID: id, Available: p.Stock, Requested: requested[id]}
		}
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, it := range lines {
		p := catalog[it.ProductID]
		if it.Price != nil && !it.Price.Equal(p.Price) {
			l.Warn("client_price_mismatch", "product_id", p.ID, "client_price", it.Price.String(), "catalog_price", p.Price.String())
		}
		item := models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	stock := make([]repo.StockLine, 0, len(ids))
	for _, id := range ids {
		stock = append(stock, repo.StockLine{ProductID: id, Quantity: requested[id]})
	}

	order := &models.Order{
		UserID:          userID,
		TotalPrice:      total,
		Status:          models.OrderStatusPending,
		ShippingAddress: address,
		PaymentMethod:   payment,
		Items:           items,
	}

	if err := s.Repo.PlaceOrder(ctx, order, stock); err != nil {
		var se *repo.StockError
		if errors.As(err, &se) {
			if se.Missing {
				return nil, productNotFound(se.ProductID)
			}
			return nil, &InsufficientStockError{ProductID: se.ProductID, Available: se.Available, Requested: se.Requested}
		}
		return nil, fmt.Errorf("%w: %w", ErrOrderPersistence, err)
	}

	l.Info("order_placed", "order_id", order.ID, "total", order.TotalPrice.String(), "items", len(items))
	publish(ctx, s.Events, mykafka.TopicOrders, fmt.Sprint(order.ID), "order_placed", order)

	return order, nil
}

func (s *OrderService) CustomerOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID, customerOrderLimit)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, rawStatus string) (*models.Order, error) {
	status, err := models.ParseOrderStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	order, err := s.Repo.UpdateOrderStatus(ctx, id, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	publish(ctx, s.Events, mykafka.TopicOrders, fmt.Sprint(order.ID), "order_status_changed", map[string]any{
		"id":     order.ID,
		"status": order.Status,
	})
	return order, nil
}
