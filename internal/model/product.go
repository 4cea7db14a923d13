// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// ProductStatus represents the computed status of a product.
type ProductStatus string

const (
	ProductStatusAvailable  ProductStatus = "available"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusDeleted    ProductStatus = "deleted"
)

// Product represents a watch in the catalog.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ModelNumber   string  `json:"model_number"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price,omitempty"` // For sale pricing, 0 when not on sale
	StockQuantity int     `json:"stock_quantity"`
	CategoryID    string  `json:"category_id"`

	// Watch-specific attributes
	MovementType    string `json:"movement_type,omitempty"`    // Automatic, Quartz, Solar, etc.
	CaseMaterial    string `json:"case_material,omitempty"`    // Stainless Steel, Titanium, etc.
	CaseDiameter    string `json:"case_diameter,omitempty"`    // 42mm, etc.
	WaterResistance string `json:"water_resistance,omitempty"` // 100m, 200m, etc.
	StrapMaterial   string `json:"strap_material,omitempty"`   // Leather, Steel, Rubber, etc.

	// Images
	MainImageURL      string `json:"main_image_url,omitempty"`
	DetailImageURL    string `json:"detail_image_url,omitempty"`
	LifestyleImageURL string `json:"lifestyle_image_url,omitempty"`

	// Status flags
	IsActive   bool `json:"is_active"`
	IsFeatured bool `json:"is_featured"`
	IsOnSale   bool `json:"is_on_sale"`

	DeletedAt *time.Time `json:"-"`
	ViewCount int64      `json:"view_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Status computes the current status of the product.
func (p *Product) Status() ProductStatus {
	if p.DeletedAt != nil {
		return ProductStatusDeleted
	}
	if !p.IsActive {
		return ProductStatusInactive
	}
	if p.StockQuantity <= 0 {
		return ProductStatusOutOfStock
	}
	return ProductStatusAvailable
}

// IsPurchasable returns true if the product can be added to a cart.
func (p *Product) IsPurchasable() bool {
	return p.Status() == ProductStatusAvailable
}

// EffectivePrice returns the price a buyer pays right now.
func (p *Product) EffectivePrice() float64 {
	return p.Price
}

// DiscountPercent returns the sale discount in whole percent, 0 when not on sale.
func (p *Product) DiscountPercent() int {
	if !p.IsOnSale || p.OriginalPrice <= p.Price || p.OriginalPrice == 0 {
		return 0
	}
	return int((1 - p.Price/p.OriginalPrice) * 100)
}

// CachedProduct represents product data stored in Redis cache.
// Uses string types for Redis hash compatibility.
type CachedProduct struct {
	Name          string `redis:"name"`
	ModelNumber   string `redis:"model_number"`
	Price         string `redis:"price"`
	OriginalPrice string `redis:"original_price"` // empty when not on sale
	StockQuantity string `redis:"stock_quantity"`
	CategoryID    string `redis:"category_id"`
	MainImageURL  string `redis:"main_image_url"`
	IsActive      string `redis:"is_active"`   // "1" or "0"
	IsFeatured    string `redis:"is_featured"` // "1" or "0"
	IsOnSale      string `redis:"is_on_sale"`  // "1" or "0"
	DeletedAt     string `redis:"deleted_at"`  // Unix timestamp or empty
	UpdatedAt     string `redis:"updated_at"`  // Unix timestamp
}

// ToProduct converts CachedProduct to the Product domain model.
// Only the fields needed on the hot read path are carried in cache.
func (c *CachedProduct) ToProduct(id string) *Product {
	p := &Product{
		ID:           id,
		Name:         c.Name,
		ModelNumber:  c.ModelNumber,
		CategoryID:   c.CategoryID,
		MainImageURL: c.MainImageURL,
		IsActive:     c.IsActive == "1",
		IsFeatured:   c.IsFeatured == "1",
		IsOnSale:     c.IsOnSale == "1",
	}

	if v, err := strconv.ParseFloat(c.Price, 64); err == nil {
		p.Price = v
	}
	if c.OriginalPrice != "" {
		if v, err := strconv.ParseFloat(c.OriginalPrice, 64); err == nil {
			p.OriginalPrice = v
		}
	}
	if v, err := strconv.Atoi(c.StockQuantity); err == nil {
		p.StockQuantity = v
	}
	if c.DeletedAt != "" {
		if ts, err := strconv.ParseInt(c.DeletedAt, 10, 64); err == nil {
			t := time.Unix(ts, 0)
			p.DeletedAt = &t
		}
	}
	if c.UpdatedAt != "" {
		if ts, err := strconv.ParseInt(c.UpdatedAt, 10, 64); err == nil {
			p.UpdatedAt = time.Unix(ts, 0)
		}
	}

	return p
}

// ToCachedProduct converts the Product domain model to CachedProduct.
func (p *Product) ToCachedProduct() *CachedProduct {
	cached := &CachedProduct{
		Name:          p.Name,
		ModelNumber:   p.ModelNumber,
		Price:         strconv.FormatFloat(p.Price, 'f', 2, 64),
		StockQuantity: strconv.Itoa(p.StockQuantity),
		CategoryID:    p.CategoryID,
		MainImageURL:  p.MainImageURL,
		IsActive:      boolToString(p.IsActive),
		IsFeatured:    boolToString(p.IsFeatured),
		IsOnSale:      boolToString(p.IsOnSale),
		UpdatedAt:     strconv.FormatInt(p.UpdatedAt.Unix(), 10),
	}

	if p.OriginalPrice > 0 {
		cached.OriginalPrice = strconv.FormatFloat(p.OriginalPrice, 'f', 2, 64)
	}
	if p.DeletedAt != nil {
		cached.DeletedAt = strconv.FormatInt(p.DeletedAt.Unix(), 10)
	}

	return cached
}

// boolToString converts boolean to "1" or "0".
func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
