// Package model defines domain entities for the application.
package model

import "time"

// CartItem represents a single product line in a user's cart.
// One row exists per (user, product); adding the same product again
// increments the quantity.
type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Product is the joined product row, populated on reads.
	Product *Product `json:"product,omitempty"`
}

// LineTotal returns the price of this line at current product pricing.
// Returns 0 when the product has not been joined.
func (i *CartItem) LineTotal() float64 {
	if i.Product == nil {
		return 0
	}
	return i.Product.EffectivePrice() * float64(i.Quantity)
}

// Cart aggregates a user's cart items with computed totals.
type Cart struct {
	UserID    string      `json:"user_id"`
	Items     []*CartItem `json:"items"`
	ItemCount int         `json:"item_count"`
	Subtotal  float64     `json:"subtotal"`
}

// BuildCart computes aggregate fields from a slice of items.
func BuildCart(userID string, items []*CartItem) *Cart {
	cart := &Cart{
		UserID: userID,
		Items:  items,
	}
	for _, item := range items {
		cart.ItemCount += item.Quantity
		cart.Subtotal += item.LineTotal()
	}
	return cart
}
