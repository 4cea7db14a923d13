package dto

import (
	"github.com/chronoshop/chronoshop/internal/model"
)

// AddCartItemRequest represents the request body for adding a cart item.
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}

// UpdateCartItemRequest represents the request body for setting a cart
// line quantity. Quantity 0 removes the line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0,max=99"`
}

// CartItemResponse represents a cart line in API responses.
type CartItemResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	LineTotal float64          `json:"line_total"`
	Product   *ProductResponse `json:"product,omitempty"`
}

// CartResponse represents the cart with computed totals.
type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Subtotal  float64            `json:"subtotal"`
}

// ToCartResponse converts a Cart model to CartResponse DTO.
func ToCartResponse(cart *model.Cart) *CartResponse {
	items := make([]CartItemResponse, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		}
		if item.Product != nil {
			items[i].Product = ToProductResponse(item.Product)
		}
	}
	return &CartResponse{
		Items:     items,
		ItemCount: cart.ItemCount,
		Subtotal:  cart.Subtotal,
	}
}
