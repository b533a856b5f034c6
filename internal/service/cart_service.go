package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// CartService операции с корзиной владельца (пользователь или анонимная сессия)
type CartService struct {
	db       *gorm.DB
	products repository.ProductRepository
	carts    repository.CartRepository
	tx       repository.TxManager
}

func NewCartService(db *gorm.DB, products repository.ProductRepository, carts repository.CartRepository, tx repository.TxManager) *CartService {
	return &CartService{db: db, products: products, carts: carts, tx: tx}
}

func (s *CartService) GetOrCreateCart(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, ErrUnauthorized
	}
	return s.carts.GetOrCreate(ctx, s.db, owner)
}

// Snapshot корзина владельца с позициями и товарами
func (s *CartService) Snapshot(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	cart, err := s.GetOrCreateCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, s.db, cart)
}

func (s *CartService) load(ctx context.Context, db *gorm.DB, cart *domain.Cart) (*domain.Cart, error) {
	items, err := s.carts.Items(ctx, db, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}

// AddItem добавляет товар или увеличивает количество существующей строки.
// Склад не резервируется, остаток только проверяется.
func (s *CartService) AddItem(ctx context.Context, owner domain.CartOwner, productID, qty int64) (*domain.CartItem, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !owner.Valid() {
		return nil, ErrUnauthorized
	}

	var out *domain.CartItem
	err := s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		cart, err := s.carts.GetOrCreate(ctx, tx, owner)
		if err != nil {
			return err
		}
		p, err := s.products.GetByID(ctx, tx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if !p.IsActive {
			return ErrProductNotFound
		}

		existing, err := s.carts.ItemByProduct(ctx, tx, cart.ID, productID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			if qty > p.InventoryCount {
				return &StockError{ProductID: p.ID, Title: p.Title, Requested: qty, Available: p.InventoryCount}
			}
			it := &domain.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: qty}
			if err := s.carts.CreateItem(ctx, tx, it); err != nil {
				return err
			}
			it.Product = *p
			out = it
			return nil
		case err != nil:
			return err
		}

		total := existing.Quantity + qty
		if total > p.InventoryCount {
			return &StockError{ProductID: p.ID, Title: p.Title, Requested: total, Available: p.InventoryCount}
		}
		if err := s.carts.SetItemQuantity(ctx, tx, existing.ID, total); err != nil {
			return err
		}
		existing.Quantity = total
		existing.Product = *p
		out = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateItem задаёт количество строки. qty <= 0 удаляет строку и возвращает removed=true.
func (s *CartService) UpdateItem(ctx context.Context, owner domain.CartOwner, itemID, qty int64) (item *domain.CartItem, removed bool, err error) {
	if !owner.Valid() {
		return nil, false, ErrUnauthorized
	}
	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		cart, err := s.carts.FindByOwner(ctx, tx, owner)
		if err != nil {
			return err
		}
		it, err := s.carts.ItemByID(ctx, tx, cart.ID, itemID)
		if err != nil {
			return err
		}
		if qty <= 0 {
			removed = true
			return s.carts.DeleteItem(ctx, tx, cart.ID, it.ID)
		}
		if qty > it.Product.InventoryCount {
			return &StockError{ProductID: it.ProductID, Title: it.Product.Title, Requested: qty, Available: it.Product.InventoryCount}
		}
		if err := s.carts.SetItemQuantity(ctx, tx, it.ID, qty); err != nil {
			return err
		}
		it.Quantity = qty
		item = it
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, ErrItemNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return item, removed, nil
}

func (s *CartService) RemoveItem(ctx context.Context, owner domain.CartOwner, itemID int64) error {
	if !owner.Valid() {
		return ErrUnauthorized
	}
	err := s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		cart, err := s.carts.FindByOwner(ctx, tx, owner)
		if err != nil {
			return err
		}
		return s.carts.DeleteItem(ctx, tx, cart.ID, itemID)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return ErrItemNotFound
	}
	return err
}
