package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/testutil"
)

type services struct {
	db       *gorm.DB
	products *ProductService
	carts    *CartService
	orders   *OrderService
	users    *UserService
}

func setup(t *testing.T) *services {
	t.Helper()
	db := testutil.NewDB(t)
	productRepo := repository.NewProducts()
	cartRepo := repository.NewCarts()
	orderRepo := repository.NewOrders()
	tx := repository.NewGormTx(db)
	tokens := auth.NewTokens(auth.Config{Secret: "test", Issuer: "test", AccessTTL: time.Minute, RefreshTTL: time.Hour})
	return &services{
		db:       db,
		products: NewProductService(db, productRepo, cartRepo, tx),
		carts:    NewCartService(db, productRepo, cartRepo, tx),
		orders:   NewOrderService(db, productRepo, cartRepo, orderRepo, tx),
		users:    NewUserService(db, repository.NewUsers(), tokens, auth.NewPasswords(bcrypt.MinCost)),
	}
}

func (s *services) product(t *testing.T, title, price string, stock int64) *domain.Product {
	t.Helper()
	p, err := s.products.Create(context.Background(), domain.Product{
		Title:          title,
		Price:          decimal.RequireFromString(price),
		InventoryCount: stock,
		IsActive:       true,
	})
	require.NoError(t, err)
	return p
}

func (s *services) stock(t *testing.T, id int64) int64 {
	t.Helper()
	p, err := s.products.Get(context.Background(), id, true)
	require.NoError(t, err)
	return p.InventoryCount
}
