package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/domain"
)

// ErrDuplicate нарушение уникальности, например email уже занят
var ErrDuplicate = errors.New("duplicate")

// Users реализация UserRepository поверх GORM
type Users struct{}

func NewUsers() *Users { return &Users{} }

var _ UserRepository = (*Users)(nil)

func (Users) Create(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (Users) GetByID(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (Users) GetByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}

func (Users) Update(ctx context.Context, db *gorm.DB, u *domain.User) error {
	res := db.WithContext(ctx).Model(u).Select("*").Omit("ID", "CreatedAt").Updates(u)
	if err := res.Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
