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

// ProductService инкапсулирует бизнес-логику вокруг товаров
type ProductService struct {
	db    *gorm.DB
	repo  repository.ProductRepository
	carts repository.CartRepository
	tx    repository.TxManager
}

func NewProductService(db *gorm.DB, repo repository.ProductRepository, carts repository.CartRepository, tx repository.TxManager) *ProductService {
	return &ProductService{db: db, repo: repo, carts: carts, tx: tx}
}

// maxPrice соответствует колонке decimal(10,2).
var maxPrice = decimal.New(1, 8)

func validateProduct(p *domain.Product) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" || p.InventoryCount < 0 {
		return ErrInvalidInput
	}
	if p.Price.IsNegative() || p.Price.GreaterThanOrEqual(maxPrice) || !p.Price.Equal(p.Price.Round(2)) {
		return ErrInvalidInput
	}
	p.Price = p.Price.Round(2)
	return nil
}

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	p.ID = 0
	if err := s.repo.Create(ctx, s.db, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Get возвращает товар; неактивный виден только при includeInactive
func (s *ProductService) Get(ctx context.Context, id int64, includeInactive bool) (*domain.Product, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.IsActive && !includeInactive {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID <= 0 {
		return nil, ErrNotFound
	}
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, s.db, &p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.GetByID(ctx, s.db, p.ID)
}

// Delete снимает товар с продажи, если он уже попал в заказы, иначе удаляет вместе
// со строками корзин. soft сообщает, какой вариант был выбран.
func (s *ProductService) Delete(ctx context.Context, id int64) (soft bool, err error) {
	if id <= 0 {
		return false, ErrNotFound
	}
	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		p, err := s.repo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		ordered, err := s.repo.HasOrderItems(ctx, tx, id)
		if err != nil {
			return err
		}
		if ordered {
			soft = true
			p.IsActive = false
			return s.repo.Update(ctx, tx, p)
		}
		if err := s.carts.DeleteItemsByProduct(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return false, ErrNotFound
	}
	return soft, err
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, int64, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, 0, ErrInvalidInput
	}
	return s.repo.List(ctx, s.db, f)
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx, s.db)
}

// SeedIfEmpty наполняет пустой каталог; возвращает число созданных товаров
func (s *ProductService) SeedIfEmpty(ctx context.Context, products []domain.Product) (int, error) {
	n, err := s.repo.Count(ctx, s.db)
	if err != nil || n > 0 {
		return 0, err
	}
	created := 0
	err = s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		for _, p := range products {
			if err := validateProduct(&p); err != nil {
				return err
			}
			p.ID = 0
			if err := s.repo.Create(ctx, tx, &p); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
