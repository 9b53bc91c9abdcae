package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

type StockLine struct {
	ProductID uint
	Quantity  int
}

// StockError aborts an order when a guarded decrement matched no row.
type StockError struct {
	ProductID uint
	Available int
	Requested int
	Missing   bool
}

func (e *StockError) Error() string {
	if e.Missing {
		return fmt.Sprintf("product %d not found", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

// PlaceOrder inserts the order and its items and decrements stock for every line
// in one transaction. Any failure rolls back all three.
func (r *GormRepo) PlaceOrder(ctx context.Context, order *models.Order, lines []StockLine) error {
	items := order.Items
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("insert order items: %w", err)
			}
		}

		for _, line := range lines {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return fmt.Errorf("decrement stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return stockFailure(tx, line)
			}
		}

		order.Items = items
		return nil
	})
}

func stockFailure(tx *gorm.DB, line StockLine) error {
	var p models.Product
	err := tx.Select("id", "stock").First(&p, line.ProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &StockError{ProductID: line.ProductID, Missing: true}
	}
	if err != nil {
		return fmt.Errorf("reread stock: %w", err)
	}
	return &StockError{ProductID: line.ProductID, Available: p.Stock, Requested: line.Quantity}
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uint, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Order("id DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Order("order_date DESC").
		Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	if err := r.DB.WithContext(ctx).Model(&order).Update("status", status).Error; err != nil {
		return nil, err
	}
	order.Status = status
	return &order, nil
}
