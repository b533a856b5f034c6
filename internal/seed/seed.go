// Package seed наполняет пустой каталог демонстрационными товарами
package seed

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// Seeder реализуется service.ProductService
type Seeder interface {
	SeedIfEmpty(ctx context.Context, products []domain.Product) (int, error)
}

type item struct {
	title, category, price string
	stock                  int64
	description            string
}

var demo = []item{
	{"Wireless Bluetooth Headphones", "Electronics", "149.99", 25, "Over-ear noise-cancelling headphones, 30 hours of battery."},
	{"Smartphone Pro Max", "Electronics", "899.99", 15, "Triple camera, 5G, all-day battery."},
	{"Ultra-Thin Laptop", "Electronics", "1299.99", 10, "16GB RAM, 512GB SSD, 14-inch display."},
	{"Gaming Mechanical Keyboard", "Electronics", "79.99", 30, "RGB backlight, tactile switches."},
	{"Smart Coffee Maker", "Home Appliances", "199.99", 20, "Schedule brews from your phone."},
	{"Fitness Tracker Watch", "Wearables", "129.99", 35, "Heart rate, sleep and step tracking."},
	{"Wireless Earbuds", "Electronics", "179.99", 40, "Compact case, active noise cancelling."},
	{"4K Ultra HD TV", "Electronics", "699.99", 8, "55-inch HDR panel."},
	{"Ergonomic Office Chair", "Furniture", "299.99", 18, "Adjustable lumbar support and armrests."},
	{"Portable Bluetooth Speaker", "Electronics", "89.99", 50, "Waterproof, 12 hours of playback."},
	{"Electric Standing Desk", "Furniture", "449.99", 7, "Dual motor, memory presets."},
	{"Limited Edition Smartwatch", "Wearables", "499.99", 5, "Sapphire glass, titanium case."},
	{"Professional Drone", "Electronics", "1299.99", 3, "4K camera, 40 minutes of flight."},
}

// Catalog демонстрационные товары, все активны
func Catalog() []domain.Product {
	out := make([]domain.Product, 0, len(demo))
	for _, it := range demo {
		out = append(out, domain.Product{
			Title:          it.title,
			Description:    it.description,
			Price:          decimal.RequireFromString(it.price),
			InventoryCount: it.stock,
			Category:       it.category,
			IsActive:       true,
		})
	}
	return out
}

func Run(ctx context.Context, s Seeder, log *slog.Logger) error {
	n, err := s.SeedIfEmpty(ctx, Catalog())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info("demo catalog seeded", slog.Int("products", n))
	}
	return nil
}
