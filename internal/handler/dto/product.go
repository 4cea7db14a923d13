package dto

import (
	"time"

	"github.com/chronoshop/chronoshop/internal/model"
)

// CreateProductRequest represents the admin request body for creating a product.
type CreateProductRequest struct {
	Name            string  `json:"name" validate:"required,max=255"`
	ModelNumber     string  `json:"model_number" validate:"required,max=100"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price" validate:"required,gt=0"`
	OriginalPrice   float64 `json:"original_price,omitempty" validate:"gte=0"`
	StockQuantity   int     `json:"stock_quantity" validate:"gte=0"`
	CategoryID      string  `json:"category_id" validate:"required"`
	MovementType    string  `json:"movement_type,omitempty"`
	CaseMaterial    string  `json:"case_material,omitempty"`
	CaseDiameter    string  `json:"case_diameter,omitempty"`
	WaterResistance string  `json:"water_resistance,omitempty"`
	StrapMaterial   string  `json:"strap_material,omitempty"`
	IsFeatured      bool    `json:"is_featured,omitempty"`
	IsOnSale        bool    `json:"is_on_sale,omitempty"`
}

// UpdateProductRequest represents the admin request body for updating a
// product. Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	OriginalPrice   *float64 `json:"original_price,omitempty"`
	StockQuantity   *int     `json:"stock_quantity,omitempty"`
	CategoryID      *string  `json:"category_id,omitempty"`
	MovementType    *string  `json:"movement_type,omitempty"`
	CaseMaterial    *string  `json:"case_material,omitempty"`
	CaseDiameter    *string  `json:"case_diameter,omitempty"`
	WaterResistance *string  `json:"water_resistance,omitempty"`
	StrapMaterial   *string  `json:"strap_material,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
	IsFeatured      *bool    `json:"is_featured,omitempty"`
	IsOnSale        *bool    `json:"is_on_sale,omitempty"`
}

// ProductResponse represents a product in API responses.
type ProductResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ModelNumber     string  `json:"model_number"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	OriginalPrice   float64 `json:"original_price,omitempty"`
	DiscountPercent int     `json:"discount_percent,omitempty"`
	StockQuantity   int     `json:"stock_quantity"`
	CategoryID      string  `json:"category_id"`

	MovementType    string `json:"movement_type,omitempty"`
	CaseMaterial    string `json:"case_material,omitempty"`
	CaseDiameter    string `json:"case_diameter,omitempty"`
	WaterResistance string `json:"water_resistance,omitempty"`
	StrapMaterial   string `json:"strap_material,omitempty"`

	MainImageURL      string `json:"main_image_url,omitempty"`
	DetailImageURL    string `json:"detail_image_url,omitempty"`
	LifestyleImageURL string `json:"lifestyle_image_url,omitempty"`

	Status     string `json:"status"`
	IsFeatured bool   `json:"is_featured"`
	IsOnSale   bool   `json:"is_on_sale"`
	ViewCount  int64  `json:"view_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductListResponse represents a paginated list of products.
type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Pagination *Pagination       `json:"pagination"`
}

// ToProductResponse converts a Product model to ProductResponse DTO.
func ToProductResponse(product *model.Product) *ProductResponse {
	return &ProductResponse{
		ID:                product.ID,
		Name:              product.Name,
		ModelNumber:       product.ModelNumber,
		Description:       product.Description,
		Price:             product.Price,
		OriginalPrice:     product.OriginalPrice,
		DiscountPercent:   product.DiscountPercent(),
		StockQuantity:     product.StockQuantity,
		CategoryID:        product.CategoryID,
		MovementType:      product.MovementType,
		CaseMaterial:      product.CaseMaterial,
		CaseDiameter:      product.CaseDiameter,
		WaterResistance:   product.WaterResistance,
		StrapMaterial:     product.StrapMaterial,
		MainImageURL:      product.MainImageURL,
		DetailImageURL:    product.DetailImageURL,
		LifestyleImageURL: product.LifestyleImageURL,
		Status:            string(product.Status()),
		IsFeatured:        product.IsFeatured,
		IsOnSale:          product.IsOnSale,
		ViewCount:         product.ViewCount,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}
}

// ToProductListResponse converts a slice of Product models to ProductListResponse.
func ToProductListResponse(products []*model.Product, nextCursor string, hasMore bool) *ProductListResponse {
	responses := make([]ProductResponse, len(products))
	for i, product := range products {
		responses[i] = *ToProductResponse(product)
	}
	return &ProductListResponse{
		Data: responses,
		Pagination: &Pagination{
			NextCursor: nextCursor,
			HasMore:    hasMore,
		},
	}
}
