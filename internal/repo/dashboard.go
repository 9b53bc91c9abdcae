package repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

type Stats struct {
	ProductCount int64
	OrderCount   int64
	TotalRevenue decimal.Decimal
}

func (r *GormRepo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Product{}).Count(&s.ProductCount).Error; err != nil {
		return Stats{}, err
	}
	if err := db.Model(&models.Order{}).Count(&s.OrderCount).Error; err != nil {
		return Stats{}, err
	}

	row := db.Model(&models.Order{}).Select("COALESCE(SUM(total_price), 0)").Row()
	if err := row.Scan(&s.TotalRevenue); err != nil {
		return Stats{}, err
	}
	return s, nil
}
