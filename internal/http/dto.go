package httpapi

import (
	"time"

	"storefront/internal/domain"
)

// Деньги отдаются строками с двумя знаками после точки

type productDTO struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Price          string    `json:"price" example:"29.99"`
	InventoryCount int64     `json:"inventory_count"`
	Category       string    `json:"category"`
	ImageURL       string    `json:"image_url"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toProductDTO(p *domain.Product) productDTO {
	return productDTO{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price.StringFixed(2),
		InventoryCount: p.InventoryCount,
		Category:       p.Category,
		ImageURL:       p.ImageURL,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type productPageDTO struct {
	Count   int64        `json:"count"`
	Page    int          `json:"page"`
	Results []productDTO `json:"results"`
}

type cartItemDTO struct {
	ID       int64      `json:"id"`
	Product  productDTO `json:"product"`
	Quantity int64      `json:"quantity"`
	Subtotal string     `json:"subtotal" example:"59.98"`
	AddedAt  time.Time  `json:"added_at"`
}

func toCartItemDTO(it *domain.CartItem) cartItemDTO {
	return cartItemDTO{
		ID:       it.ID,
		Product:  toProductDTO(&it.Product),
		Quantity: it.Quantity,
		Subtotal: it.Subtotal().StringFixed(2),
		AddedAt:  it.CreatedAt,
	}
}

type cartDTO struct {
	ID         int64         `json:"id"`
	Items      []cartItemDTO `json:"items"`
	TotalItems int64         `json:"total_items"`
	Subtotal   string        `json:"subtotal"`
	Total      string        `json:"total"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func toCartDTO(c *domain.Cart) cartDTO {
	items := make([]cartItemDTO, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, toCartItemDTO(&c.Items[i]))
	}
	return cartDTO{
		ID:         c.ID,
		Items:      items,
		TotalItems: c.TotalItems(),
		Subtotal:   c.Subtotal().StringFixed(2),
		Total:      c.Total().StringFixed(2),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

type orderItemDTO struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product"`
	ProductTitle string `json:"product_title"`
	Quantity     int64  `json:"quantity"`
	Price        string `json:"price"`
	Subtotal     string `json:"subtotal"`
}

type orderDTO struct {
	ID              int64          `json:"id"`
	UserID          int64          `json:"user"`
	Items           []orderItemDTO `json:"items"`
	TotalPrice      string         `json:"total_price" example:"74.98"`
	Status          string         `json:"status" example:"pending"`
	ShippingAddress string         `json:"shipping_address"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func toOrderDTO(o *domain.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDTO{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ProductTitle: it.Product.Title,
			Quantity:     it.Quantity,
			Price:        it.Price.StringFixed(2),
			Subtotal:     it.Subtotal().StringFixed(2),
		})
	}
	return orderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		TotalPrice:      o.TotalPrice.StringFixed(2),
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type userDTO struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"date_joined"`
}

func toUserDTO(u *domain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Username: u.Username, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt}
}

type tokenDTO struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	ExpiresIn int64  `json:"expires_in"`
	TokenType string `json:"token_type"`
}

func toTokenDTO(p *domain.TokenPair) tokenDTO {
	return tokenDTO{Access: p.AccessToken, Refresh: p.RefreshToken, ExpiresIn: p.ExpiresIn, TokenType: p.TokenType}
}

type messageDTO struct {
	Message string `json:"message"`
}

type errorDTO struct {
	Error string `json:"error"`
}
