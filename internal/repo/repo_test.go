package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()
	ctx := context.Background()
	gdb, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })
	return New(gdb)
}

func seedUser(t *testing.T, r *GormRepo, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "U", Email: email, PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, r *GormRepo, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock, Category: "misc"}
	_, err := r.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return p
}

func stockOf(t *testing.T, r *GormRepo, id uint) int {
	t.Helper()
	p, err := r.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestCreateUser_Duplicate(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, r, "dup@example.com")

	taken, err := r.EmailTaken(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	err = r.CreateUser(ctx, &models.User{Name: "B", Email: "dup@example.com", PasswordHash: "y", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, ErrUserAlreadyExist)
}

func TestProducts_CRUD(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Desk", "120.00", 4)
	seedProduct(t, r, "Chair", "45.50", 10)

	all, err := r.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	newest, err := r.ListProductsNewestFirst(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Chair", newest[0].Name)

	name := "Standing desk"
	price := decimal.RequireFromString("150")
	patched, err := r.PatchProduct(ctx, p.ID, transport.PatchProductRequest{Name: &name, Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Standing desk", patched.Name)
	assert.Equal(t, 4, patched.Stock)

	require.NoError(t, r.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, r.DeleteProduct(ctx, p.ID), gorm.ErrRecordNotFound)

	_, err = r.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPatchProduct_KeepsConcurrentStockChange(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	p := seedProduct(t, r, "Lamp", "10", 5)

	// An order selling the whole stock commits right after the patch reads the row.
	fired := false
	require.NoError(t, r.DB.Callback().Query().After("gorm:query").Register("test:sell_out", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "products" {
			return
		}
		fired = true
		tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE products SET stock = 0 WHERE id = ?", p.ID)
	}))

	name := "Desk lamp"
	patched, err := r.PatchProduct(ctx, p.ID, transport.PatchProductRequest{Name: &name})
	require.NoError(t, err)
	require.True(t, fired)
	assert.Equal(t, "Desk lamp", patched.Name)
	assert.Equal(t, 0, patched.Stock)
	assert.Equal(t, 0, stockOf(t, r, p.ID))
}

func TestPatchProduct_Missing(t *testing.T) {
	r := newTestRepo(t)
	name := "x"
	_, err := r.PatchProduct(context.Background(), 42, transport.PatchProductRequest{Name: &name})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSearchProducts(t *testing.T) {
	r := newTestRepo(t)
	seedProduct(t, r, "Red Lamp", "10", 1)
	seedProduct(t, r, "Blue lamp", "12", 1)
	seedProduct(t, r, "Sofa", "300", 1)

	total, items, err := r.SearchProducts(context.Background(), "LAMP", 0, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 1)
}

func TestPlaceOrder_DecrementsStock(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "buyer@example.com")
	a := seedProduct(t, r, "A", "10", 5)

	order := &models.Order{
		UserID:          u.ID,
		TotalPrice:      decimal.RequireFromString("20"),
		Status:          models.OrderStatusPending,
		ShippingAddress: "Main st",
		PaymentMethod:   "card",
		Items:           []models.OrderItem{{ProductID: a.ID, ProductName: "A", Quantity: 2, UnitPrice: a.Price}},
	}
	require.NoError(t, r.PlaceOrder(ctx, order, []StockLine{{ProductID: a.ID, Quantity: 2}}))
	assert.NotZero(t, order.ID)
	assert.Equal(t, 3, stockOf(t, r, a.ID))

	got, err := r.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, order.ID, got.Items[0].OrderID)
}

func TestPlaceOrder_RollsBackOnShortStock(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "buyer@example.com")
	a := seedProduct(t, r, "A", "10", 5)
	b := seedProduct(t, r, "B", "3", 1)

	order := &models.Order{
		UserID:          u.ID,
		TotalPrice:      decimal.RequireFromString("26"),
		Status:          models.OrderStatusPending,
		ShippingAddress: "Main st",
		PaymentMethod:   "card",
		Items: []models.OrderItem{
			{ProductID: a.ID, Quantity: 2, UnitPrice: a.Price},
			{ProductID: b.ID, Quantity: 2, UnitPrice: b.Price},
		},
	}
	err := r.PlaceOrder(ctx, order, []StockLine{{ProductID: a.ID, Quantity: 2}, {ProductID: b.ID, Quantity: 2}})

	var se *StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, b.ID, se.ProductID)
	assert.Equal(t, 1, se.Available)
	assert.Equal(t, 2, se.Requested)

	assert.Equal(t, 5, stockOf(t, r, a.ID))
	assert.Equal(t, 1, stockOf(t, r, b.ID))

	var orders, items int64
	require.NoError(t, r.DB.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, r.DB.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, orders)
	assert.Zero(t, items)
}

func TestPlaceOrder_MissingProduct(t *testing.T) {
	r := newTestRepo(t)
	u := seedUser(t, r, "buyer@example.com")

	order := &models.Order{
		UserID:          u.ID,
		TotalPrice:      decimal.Zero,
		Status:          models.OrderStatusPending,
		ShippingAddress: "Main st",
		PaymentMethod:   "card",
		Items:           []models.OrderItem{{ProductID: 999, Quantity: 1, UnitPrice: decimal.Zero}},
	}
	err := r.PlaceOrder(context.Background(), order, []StockLine{{ProductID: 999, Quantity: 1}})

	var se *StockError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Missing)
}

func TestOrders_StatusAndStats(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, r, "buyer@example.com")
	a := seedProduct(t, r, "A", "12.50", 10)

	for i := 0; i < 2; i++ {
		order := &models.Order{
			UserID:          u.ID,
			TotalPrice:      decimal.RequireFromString("25"),
			Status:          models.OrderStatusPending,
			ShippingAddress: "Main st",
			PaymentMethod:   "card",
			Items:           []models.OrderItem{{ProductID: a.ID, Quantity: 2, UnitPrice: a.Price}},
		}
		require.NoError(t, r.PlaceOrder(ctx, order, []StockLine{{ProductID: a.ID, Quantity: 2}}))
	}

	mine, err := r.ListOrdersByUser(ctx, u.ID, 50)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	updated, err := r.UpdateOrderStatus(ctx, mine[0].ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	_, err = r.UpdateOrderStatus(ctx, 12345, models.OrderStatusPaid)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	all, err := r.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Customer)
	assert.Equal(t, "buyer@example.com", all[0].Customer.Email)
	assert.Len(t, all[0].Items, 1)

	stats, err := r.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.ProductCount)
	assert.EqualValues(t, 2, stats.OrderCount)
	assert.Equal(t, "50.00", stats.TotalRevenue.StringFixed(2))
}
