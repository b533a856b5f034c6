package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain"
)

// Products реализация ProductRepository поверх GORM
type Products struct{}

func NewProducts() *Products { return &Products{} }

var _ ProductRepository = (*Products)(nil)

func (Products) Create(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (Products) GetByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

// GetForUpdate выполняет SELECT ... FOR UPDATE. Диалект sqlite отбрасывает блокировку,
// там запись сериализует блокировка базы.
func (Products) GetForUpdate(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return &p, nil
}

// Update пишет все колонки, включая нулевые значения (is_active=false, остаток 0)
func (Products) Update(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	res := db.WithContext(ctx).Model(p).Select("*").Omit("ID", "CreatedAt").Updates(p)
	if err := res.Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (Products) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Delete(&domain.Product{}, id)
	if err := res.Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func productScope(f ProductFilter) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = q.Model(&domain.Product{})
		if f.OnlyActive {
			q = q.Where("is_active = ?", true)
		}
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		if s := strings.TrimSpace(f.Search); s != "" {
			pattern := "%" + strings.ToLower(s) + "%"
			q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)", pattern, pattern, pattern)
		}
		if f.MinPrice != nil {
			q = q.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			q = q.Where("price <= ?", *f.MaxPrice)
		}
		return q
	}
}

// List страница подходящих товаров (новые первыми) и общее число совпадений
func (Products) List(ctx context.Context, db *gorm.DB, f ProductFilter) ([]domain.Product, int64, error) {
	var total int64
	if err := db.WithContext(ctx).Scopes(productScope(f)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	out := make([]domain.Product, 0)
	q := db.WithContext(ctx).Scopes(productScope(f)).Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return out, total, nil
}

func (Products) Categories(ctx context.Context, db *gorm.DB) ([]string, error) {
	cats := make([]string, 0)
	err := db.WithContext(ctx).Model(&domain.Product{}).
		Where("category <> ?", "").
		Distinct().
		Order("category").
		Pluck("category", &cats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return cats, nil
}

func (Products) DecrementStock(ctx context.Context, db *gorm.DB, id, qty int64) (bool, error) {
	res := db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND inventory_count >= ?", id, qty).
		Update("inventory_count", gorm.Expr("inventory_count - ?", qty))
	if err := res.Error; err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return res.RowsAffected == 1, nil
}

func (Products) HasOrderItems(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.OrderItem{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to count order items: %w", err)
	}
	return n > 0, nil
}

func (Products) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
