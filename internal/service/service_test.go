package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []mykafka.Event
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _, _ string, ev mykafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type env struct {
	repo    *repo.GormRepo
	events  *recordingPublisher
	tokens  *tokens.Authority
	auth    *AuthService
	catalog *CatalogService
	orders  *OrderService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	gdb, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx, gdb))
	t.Cleanup(func() { _ = db.Close(gdb) })

	r := repo.New(gdb)
	events := &recordingPublisher{}
	authority := tokens.NewAuthority([]byte("service-test"), time.Hour, nil)

	return &env{
		repo:    r,
		events:  events,
		tokens:  authority,
		auth:    &AuthService{Repo: r, Tokens: authority, Events: events},
		catalog: &CatalogService{Repo: r, Events: events},
		orders:  &OrderService{Repo: r, Events: events},
	}
}

func (e *env) product(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock, Category: "test"}
	_, err := e.repo.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return p
}

func (e *env) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "Buyer", Email: email, PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, e.repo.CreateUser(context.Background(), u))
	return u
}

func (e *env) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := e.repo.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (e *env) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.repo.DB.Model(model).Count(&n).Error)
	return n
}
