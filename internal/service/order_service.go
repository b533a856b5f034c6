package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// OrderService оформление заказа из корзины и чтение заказов
type OrderService struct {
	db       *gorm.DB
	products repository.ProductRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
}

func NewOrderService(db *gorm.DB, products repository.ProductRepository, carts repository.CartRepository, orders repository.OrderRepository, tx repository.TxManager) *OrderService {
	return &OrderService{db: db, products: products, carts: carts, orders: orders, tx: tx}
}

// PlaceOrder превращает корзину пользователя в заказ одной транзакцией: списывает
// остатки, фиксирует цены и очищает корзину. При нехватке любого товара ничего не
// меняется.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, shippingAddress string) (*domain.Order, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	var orderID int64
	err := s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		cart, err := s.carts.FindByOwner(ctx, tx, domain.UserOwner(userID))
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEmptyCart
		}
		if err != nil {
			return err
		}
		lines, err := s.carts.Items(ctx, tx, cart.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		o := &domain.Order{
			UserID:          userID,
			TotalPrice:      decimal.Zero,
			Status:          domain.OrderStatusPending,
			ShippingAddress: strings.TrimSpace(shippingAddress),
		}
		if err := s.orders.Create(ctx, tx, o); err != nil {
			return err
		}

		total := decimal.Zero
		for _, line := range lines {
			// свежее чтение под блокировкой, подгруженный товар мог устареть
			p, err := s.products.GetForUpdate(ctx, tx, line.ProductID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			stockErr := &StockError{ProductID: p.ID, Title: p.Title, Requested: line.Quantity, Available: p.InventoryCount}
			if p.InventoryCount < line.Quantity {
				return stockErr
			}
			ok, err := s.products.DecrementStock(ctx, tx, p.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return stockErr
			}

			it := &domain.OrderItem{OrderID: o.ID, ProductID: p.ID, Quantity: line.Quantity, Price: p.Price}
			if err := s.orders.CreateItem(ctx, tx, it); err != nil {
				return err
			}
			total = total.Add(it.Subtotal())
		}

		if err := s.orders.SetTotal(ctx, tx, o.ID, total); err != nil {
			return err
		}
		if err := s.carts.ClearItems(ctx, tx, cart.ID); err != nil {
			return err
		}
		orderID = o.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, s.db, orderID)
}

// ListOrders заказы пользователя, новые первыми
func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	return s.orders.ListForUser(ctx, s.db, userID)
}

// GetOrder чужой заказ неотличим от несуществующего
func (s *OrderService) GetOrder(ctx context.Context, userID, id int64) (*domain.Order, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}
	o, err := s.orders.GetForUser(ctx, s.db, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return o, err
}

// SetStatus присваивает любой из известных статусов; правил переходов нет
func (s *OrderService) SetStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := s.orders.SetStatus(ctx, s.db, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.orders.GetByID(ctx, s.db, id)
}
