package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product представляет товар в каталоге
type Product struct {
	ID             int64           `gorm:"primaryKey"`
	Title          string          `gorm:"size:255;not null"`
	Description    string          `gorm:"type:text"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	InventoryCount int64           `gorm:"not null"`
	Category       string          `gorm:"size:100;index"`
	ImageURL       string          `gorm:"size:500"`
	IsActive       bool            `gorm:"not null;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Cart корзина, принадлежит либо пользователю, либо анонимной сессии
type Cart struct {
	ID         int64   `gorm:"primaryKey"`
	UserID     *int64  `gorm:"uniqueIndex"`
	SessionKey *string `gorm:"size:64;uniqueIndex"`
	Items      []CartItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Owner восстанавливает владельца корзины из колонок
func (c *Cart) Owner() CartOwner {
	if c.UserID != nil {
		return UserOwner(*c.UserID)
	}
	if c.SessionKey != nil {
		return SessionOwner(*c.SessionKey)
	}
	return CartOwner{}
}

// TotalItems сумма количеств по всем позициям
func (c *Cart) TotalItems() int64 {
	var n int64
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal сумма подытогов по всем позициям
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// Total итог корзины; доставка и налоги не считаются
func (c *Cart) Total() decimal.Decimal { return c.Subtotal() }

// CartItem позиция корзины
type CartItem struct {
	ID        int64   `gorm:"primaryKey"`
	CartID    int64   `gorm:"not null;uniqueIndex:idx_cart_product"`
	ProductID int64   `gorm:"not null;uniqueIndex:idx_cart_product"`
	Product   Product `gorm:"foreignKey:ProductID"`
	Quantity  int64   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Subtotal считается по текущей цене товара
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// OrderStatus тип статуса заказа
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid сообщает, известен ли статус
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order сущность заказа
type Order struct {
	ID              int64           `gorm:"primaryKey"`
	UserID          int64           `gorm:"not null;index"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status          OrderStatus     `gorm:"size:20;not null"`
	ShippingAddress string          `gorm:"type:text"`
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem позиция в заказе; цена фиксируется на момент покупки
type OrderItem struct {
	ID        int64           `gorm:"primaryKey"`
	OrderID   int64           `gorm:"not null;index"`
	ProductID int64           `gorm:"not null;index"`
	Product   Product         `gorm:"foreignKey:ProductID"`
	Quantity  int64           `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}

// Subtotal количество × зафиксированная цена
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// User учётная запись покупателя или администратора
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Email        string `gorm:"size:254;uniqueIndex;not null"`
	Username     string `gorm:"size:150"`
	PasswordHash string `gorm:"not null"`
	IsAdmin      bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenPair access и refresh токены
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	TokenType    string
}
