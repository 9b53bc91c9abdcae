package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type DashboardService struct {
	Repo   *repo.GormRepo
	Orders *OrderService
}

// Dashboard returns store-wide stats for admins and the caller's own orders otherwise.
func (s *DashboardService) Dashboard(ctx context.Context, id tokens.Identity) (any, error) {
	if id.Role == models.RoleAdmin {
		stats, err := s.Repo.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("load stats: %w", err)
		}
		products, err := s.Repo.ListProductsNewestFirst(ctx)
		if err != nil {
			return nil, fmt.Errorf("load products: %w", err)
		}
		return transport.AdminDashboard{
			Role: models.RoleAdmin,
			Stats: transport.DashboardStats{
				ProductCount: stats.ProductCount,
				OrderCount:   stats.OrderCount,
				TotalRevenue: stats.TotalRevenue,
			},
			Products: products,
		}, nil
	}

	orders, err := s.Orders.CustomerOrders(ctx, id.ID)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return transport.CustomerDashboard{Role: id.Role, Orders: orders}, nil
}
