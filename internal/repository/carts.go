package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain"
)

// ErrInvalidOwner владелец корзины не пользователь и не сессия
var ErrInvalidOwner = errors.New("invalid cart owner")

// Carts реализация CartRepository поверх GORM
type Carts struct{}

func NewCarts() *Carts { return &Carts{} }

var _ CartRepository = (*Carts)(nil)

func ownerScope(owner domain.CartOwner) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if id, ok := owner.UserID(); ok {
			return q.Where("user_id = ?", id)
		}
		key, _ := owner.SessionKey()
		return q.Where("session_key = ?", key)
	}
}

// GetOrCreate опирается на уникальный индекс владельца: при гонке первых запросов
// проигравшая вставка ничего не делает, и оба читают одну и ту же строку.
func (c Carts) GetOrCreate(ctx context.Context, db *gorm.DB, owner domain.CartOwner) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}
	cart := domain.Cart{}
	if id, ok := owner.UserID(); ok {
		cart.UserID = &id
	} else {
		key, _ := owner.SessionKey()
		cart.SessionKey = &key
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return c.FindByOwner(ctx, db, owner)
}

func (Carts) FindByOwner(ctx context.Context, db *gorm.DB, owner domain.CartOwner) (*domain.Cart, error) {
	if !owner.Valid() {
		return nil, ErrInvalidOwner
	}
	var cart domain.Cart
	if err := db.WithContext(ctx).Scopes(ownerScope(owner)).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return &cart, nil
}

func (Carts) Delete(ctx context.Context, db *gorm.DB, cartID int64) error {
	if err := db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	res := db.WithContext(ctx).Delete(&domain.Cart{}, cartID)
	if err := res.Error; err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (Carts) Items(ctx context.Context, db *gorm.DB, cartID int64) ([]domain.CartItem, error) {
	items := make([]domain.CartItem, 0)
	err := db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	return items, nil
}

func (Carts) ItemByID(ctx context.Context, db *gorm.DB, cartID, itemID int64) (*domain.CartItem, error) {
	var it domain.CartItem
	err := db.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND cart_id = ?", itemID, cartID).
		First(&it).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &it, nil
}

func (Carts) ItemByProduct(ctx context.Context, db *gorm.DB, cartID, productID int64) (*domain.CartItem, error) {
	var it domain.CartItem
	err := db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&it).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &it, nil
}

func (Carts) CreateItem(ctx context.Context, db *gorm.DB, it *domain.CartItem) error {
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(it).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

func (Carts) SetItemQuantity(ctx context.Context, db *gorm.DB, itemID, qty int64) error {
	res := db.WithContext(ctx).Model(&domain.CartItem{}).Where("id = ?", itemID).Update("quantity", qty)
	if err := res.Error; err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (Carts) DeleteItem(ctx context.Context, db *gorm.DB, cartID, itemID int64) error {
	res := db.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&domain.CartItem{})
	if err := res.Error; err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (Carts) ClearItems(ctx context.Context, db *gorm.DB, cartID int64) error {
	if err := db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (Carts) DeleteItemsByProduct(ctx context.Context, db *gorm.DB, productID int64) error {
	if err := db.WithContext(ctx).Where("product_id = ?", productID).Delete(&domain.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart items for product: %w", err)
	}
	return nil
}
