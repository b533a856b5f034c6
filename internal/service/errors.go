package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrProductNotFound    = errors.New("product not found")
	ErrInsufficientStock  = errors.New("not enough stock available")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrItemNotFound       = errors.New("cart item not found")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("admin privileges required")
	ErrNotFound           = errors.New("not found")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidStatus      = errors.New("invalid order status")
)

// StockError недостаточно товара на складе для запрошенного количества
type StockError struct {
	ProductID int64
	Title     string
	Requested int64
	Available int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough stock for %s", e.Title)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
