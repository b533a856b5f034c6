package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = errors.New("not found")

// ProductFilter параметры фильтрации списка товаров
type ProductFilter struct {
	Search     string
	Category   string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	OnlyActive bool
	Offset     int
	Limit      int
}

// Каждый метод репозитория получает хэндл, на котором выполняется: корневой *gorm.DB
// или транзакцию из TxManager.WithTransaction.

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, db *gorm.DB, p *domain.Product) error
	GetByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error)
	// GetForUpdate перечитывает строку и блокирует её до конца транзакции
	GetForUpdate(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error)
	Update(ctx context.Context, db *gorm.DB, p *domain.Product) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	List(ctx context.Context, db *gorm.DB, f ProductFilter) ([]domain.Product, int64, error)
	Categories(ctx context.Context, db *gorm.DB) ([]string, error)
	// DecrementStock списывает qty, только если остатка хватает; false значит не списано
	DecrementStock(ctx context.Context, db *gorm.DB, id, qty int64) (bool, error)
	HasOrderItems(ctx context.Context, db *gorm.DB, id int64) (bool, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}

// CartRepository интерфейс репозитория корзин
type CartRepository interface {
	GetOrCreate(ctx context.Context, db *gorm.DB, owner domain.CartOwner) (*domain.Cart, error)
	FindByOwner(ctx context.Context, db *gorm.DB, owner domain.CartOwner) (*domain.Cart, error)
	Delete(ctx context.Context, db *gorm.DB, cartID int64) error
	// Items строки корзины с подгруженными товарами, старые первыми
	Items(ctx context.Context, db *gorm.DB, cartID int64) ([]domain.CartItem, error)
	ItemByID(ctx context.Context, db *gorm.DB, cartID, itemID int64) (*domain.CartItem, error)
	ItemByProduct(ctx context.Context, db *gorm.DB, cartID, productID int64) (*domain.CartItem, error)
	CreateItem(ctx context.Context, db *gorm.DB, it *domain.CartItem) error
	SetItemQuantity(ctx context.Context, db *gorm.DB, itemID, qty int64) error
	DeleteItem(ctx context.Context, db *gorm.DB, cartID, itemID int64) error
	ClearItems(ctx context.Context, db *gorm.DB, cartID int64) error
	DeleteItemsByProduct(ctx context.Context, db *gorm.DB, productID int64) error
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, db *gorm.DB, o *domain.Order) error
	CreateItem(ctx context.Context, db *gorm.DB, it *domain.OrderItem) error
	SetTotal(ctx context.Context, db *gorm.DB, orderID int64, total decimal.Decimal) error
	SetStatus(ctx context.Context, db *gorm.DB, orderID int64, status domain.OrderStatus) error
	GetByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error)
	// GetForUser чужой заказ возвращается как не найденный
	GetForUser(ctx context.Context, db *gorm.DB, id, userID int64) (*domain.Order, error)
	ListForUser(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Order, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	Create(ctx context.Context, db *gorm.DB, u *domain.User) error
	GetByID(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error)
	Update(ctx context.Context, db *gorm.DB, u *domain.User) error
}

// TxManager абстракция транзакции. fn получает хэндл транзакции явно.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
