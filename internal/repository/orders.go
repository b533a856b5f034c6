package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain"
)

// Orders реализация OrderRepository поверх GORM
type Orders struct{}

func NewOrders() *Orders { return &Orders{} }

var _ OrderRepository = (*Orders)(nil)

func (Orders) Create(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (Orders) CreateItem(ctx context.Context, db *gorm.DB, it *domain.OrderItem) error {
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(it).Error; err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (Orders) SetTotal(ctx context.Context, db *gorm.DB, orderID int64, total decimal.Decimal) error {
	res := db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", orderID).Update("total_price", total)
	if err := res.Error; err != nil {
		return fmt.Errorf("failed to set order total: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (Orders) SetStatus(ctx context.Context, db *gorm.DB, orderID int64, status domain.OrderStatus) error {
	res := db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", orderID).Update("status", status)
	if err := res.Error; err != nil {
		return fmt.Errorf("failed to set order status: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func withItems(q *gorm.DB) *gorm.DB {
	return q.Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).Preload("Items.Product")
}

func (Orders) GetByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := db.WithContext(ctx).Scopes(withItems).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &o, nil
}

func (Orders) GetForUser(ctx context.Context, db *gorm.DB, id, userID int64) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Scopes(withItems).
		Where("id = ? AND user_id = ?", id, userID).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &o, nil
}

func (Orders) ListForUser(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Order, error) {
	out := make([]domain.Order, 0)
	err := db.WithContext(ctx).Scopes(withItems).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return out, nil
}
