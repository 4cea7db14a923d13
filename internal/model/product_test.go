package model

import (
	"testing"
	"time"
)

func TestProduct_Status(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		product Product
		want    ProductStatus
	}{
		{"available", Product{IsActive: true, StockQuantity: 5}, ProductStatusAvailable},
		{"out_of_stock", Product{IsActive: true, StockQuantity: 0}, ProductStatusOutOfStock},
		{"inactive", Product{IsActive: false, StockQuantity: 5}, ProductStatusInactive},
		{"deleted", Product{IsActive: true, StockQuantity: 5, DeletedAt: &now}, ProductStatusDeleted},
		{"deleted_wins_over_inactive", Product{IsActive: false, DeletedAt: &now}, ProductStatusDeleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProduct_IsPurchasable(t *testing.T) {
	p := Product{IsActive: true, StockQuantity: 1}
	if !p.IsPurchasable() {
		t.Error("in-stock active product should be purchasable")
	}

	p.StockQuantity = 0
	if p.IsPurchasable() {
		t.Error("out-of-stock product should not be purchasable")
	}
}

func TestProduct_DiscountPercent(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    int
	}{
		{"not_on_sale", Product{Price: 100, OriginalPrice: 200}, 0},
		{"half_price", Product{Price: 100, OriginalPrice: 200, IsOnSale: true}, 50},
		{"no_original_price", Product{Price: 100, IsOnSale: true}, 0},
		{"original_below_price", Product{Price: 200, OriginalPrice: 100, IsOnSale: true}, 0},
		{"typical_sale", Product{Price: 295, OriginalPrice: 350, IsOnSale: true}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.product.DiscountPercent(); got != tt.want {
				t.Errorf("DiscountPercent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCachedProduct_RoundTrip(t *testing.T) {
	updated := time.Unix(1700000000, 0)
	p := &Product{
		ID:            "prod-1",
		Name:          "Solar Diver",
		ModelNumber:   "SNE497",
		Price:         295.00,
		OriginalPrice: 350.00,
		StockQuantity: 15,
		CategoryID:    "cat-1",
		MainImageURL:  "https://img.example.com/sne497.jpg",
		IsActive:      true,
		IsFeatured:    true,
		IsOnSale:      true,
		UpdatedAt:     updated,
	}

	got := p.ToCachedProduct().ToProduct("prod-1")

	if got.Name != p.Name || got.ModelNumber != p.ModelNumber {
		t.Errorf("identity fields lost: %+v", got)
	}
	if got.Price != p.Price {
		t.Errorf("Price = %v, want %v", got.Price, p.Price)
	}
	if got.OriginalPrice != p.OriginalPrice {
		t.Errorf("OriginalPrice = %v, want %v", got.OriginalPrice, p.OriginalPrice)
	}
	if got.StockQuantity != p.StockQuantity {
		t.Errorf("StockQuantity = %d, want %d", got.StockQuantity, p.StockQuantity)
	}
	if !got.IsActive || !got.IsFeatured || !got.IsOnSale {
		t.Error("boolean flags lost in cache round trip")
	}
	if !got.UpdatedAt.Equal(updated) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, updated)
	}
	if got.DeletedAt != nil {
		t.Error("DeletedAt should stay nil")
	}
}

func TestCachedProduct_EmptyOptionalFields(t *testing.T) {
	cached := &CachedProduct{
		Name:          "Cocktail Time",
		Price:         "350.00",
		StockQuantity: "12",
		IsActive:      "1",
		UpdatedAt:     "1700000000",
	}

	p := cached.ToProduct("prod-2")
	if p.OriginalPrice != 0 {
		t.Errorf("OriginalPrice = %v, want 0", p.OriginalPrice)
	}
	if p.DeletedAt != nil {
		t.Error("DeletedAt should be nil for empty field")
	}
}
