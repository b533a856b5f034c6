package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestPlaceOrder_Success(t *testing.T) {
	ctx := context.Background()
	s := setup(t)
	a := s.product(t, "A", "29.99", 10)
	b := s.product(t, "B", "15.00", 5)
	owner := domain.UserOwner(1)

	_, err := s.carts.AddItem(ctx, owner, a.ID, 2)
	require.NoError(t, err)
	_, err = s.carts.AddItem(ctx, owner, b.ID, 1)
	require.NoError(t, err)

	o, err := s.orders.PlaceOrder(ctx, 1, " 123 Test Street ")
	require.NoError(t, err)
	assert.Equal(t, "74.98", o.TotalPrice.StringFixed(2))
	assert.Equal(t, domain.OrderStatusPending, o.Status)
	assert.Equal(t, "123 Test Street", o.ShippingAddress)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "29.99", o.Items[0].Price.StringFixed(2))

	assert.EqualValues(t, 8, s.stock(t, a.ID))
	assert.EqualValues(t, 4, s.stock(t, b.ID))

	cart, err := s.carts.Snapshot(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// captured price survives later price changes
	a.Price = a.Price.Add(a.Price)
	_, err = s.products.Update(ctx, *a)
	require.NoError(t, err)
	got, err := s.orders.GetOrder(ctx, 1, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "74.98", got.TotalPrice.StringFixed(2))
	assert.Equal(t, "29.99", got.Items[0].Price.StringFixed(2))
}

func TestPlaceOrder_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := setup(t)
	a := s.product(t, "A", "1.00", 10)
	b := s.product(t, "B", "1.00", 10)
	owner := domain.UserOwner(1)

	_, err := s.carts.AddItem(ctx, owner, a.ID, 2)
	require.NoError(t, err)
	_, err = s.carts.AddItem(ctx, owner, b.ID, 10)
	require.NoError(t, err)

	// stock of B drops after it was added to the cart
	b.InventoryCount = 5
	_, err = s.products.Update(ctx, *b)
	require.NoError(t, err)

	_, err = s.orders.PlaceOrder(ctx, 1, "")
	var se *StockError
	require.True(t, errors.As(err, &se), "got %v", err)
	assert.Equal(t, b.ID, se.ProductID)
	assert.Equal(t, "not enough stock for B", se.Error())

	assert.EqualValues(t, 10, s.stock(t, a.ID))
	assert.EqualValues(t, 5, s.stock(t, b.ID))

	orders, err := s.orders.ListOrders(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, orders)
	var n int64
	require.NoError(t, s.db.Model(&domain.OrderItem{}).Count(&n).Error)
	assert.Zero(t, n)

	cart, err := s.carts.Snapshot(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2, "cart untouched")
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	ctx := context.Background()
	s := setup(t)

	_, err := s.orders.PlaceOrder(ctx, 1, "")
	assert.ErrorIs(t, err, ErrEmptyCart, "no cart at all")

	_, err = s.carts.Snapshot(ctx, domain.UserOwner(1))
	require.NoError(t, err)
	_, err = s.orders.PlaceOrder(ctx, 1, "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrders_Ownership(t *testing.T) {
	ctx := context.Background()
	s := setup(t)
	p := s.product(t, "P", "3.00", 10)

	_, err := s.carts.AddItem(ctx, domain.UserOwner(1), p.ID, 1)
	require.NoError(t, err)
	first, err := s.orders.PlaceOrder(ctx, 1, "")
	require.NoError(t, err)
	_, err = s.carts.AddItem(ctx, domain.UserOwner(1), p.ID, 1)
	require.NoError(t, err)
	second, err := s.orders.PlaceOrder(ctx, 1, "")
	require.NoError(t, err)

	_, err = s.orders.GetOrder(ctx, 2, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.orders.ListOrders(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	other, err := s.orders.ListOrders(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestOrders_SetStatus(t *testing.T) {
	ctx := context.Background()
	s := setup(t)
	p := s.product(t, "P", "3.00", 10)
	_, err := s.carts.AddItem(ctx, domain.UserOwner(1), p.ID, 1)
	require.NoError(t, err)
	o, err := s.orders.PlaceOrder(ctx, 1, "")
	require.NoError(t, err)

	got, err := s.orders.SetStatus(ctx, o.ID, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, got.Status)

	// no transition rules
	got, err = s.orders.SetStatus(ctx, o.ID, domain.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)

	_, err = s.orders.SetStatus(ctx, o.ID, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = s.orders.SetStatus(ctx, 999, domain.OrderStatusPaid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceOrder_ConcurrentNeverOversells(t *testing.T) {
	ctx := context.Background()
	s := setup(t)
	const stock, buyers = 3, 8
	p := s.product(t, "Last units", "9.99", stock)

	for u := int64(1); u <= buyers; u++ {
		_, err := s.carts.AddItem(ctx, domain.UserOwner(u), p.ID, 1)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, buyers)
	for u := int64(1); u <= buyers; u++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_, err := s.orders.PlaceOrder(ctx, uid, "")
			errs <- err
		}(u)
	}
	wg.Wait()
	close(errs)

	ok, short := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, stock, ok)
	assert.Equal(t, buyers-stock, short)
	assert.Zero(t, s.stock(t, p.ID))
}
