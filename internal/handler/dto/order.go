package dto

import (
	"time"

	"github.com/chronoshop/chronoshop/internal/model"
)

// ShippingInfoRequest represents the shipping block of a checkout request.
type ShippingInfoRequest struct {
	Name       string `json:"name" validate:"required,max=255"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Phone      string `json:"phone,omitempty" validate:"max=50"`
	Address    string `json:"address" validate:"required,max=500"`
	City       string `json:"city" validate:"required,max=100"`
	State      string `json:"state,omitempty" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"required,max=20"`
	Country    string `json:"country" validate:"required,max=100"`
}

// CheckoutRequest represents the request body for placing an order.
type CheckoutRequest struct {
	Shipping      ShippingInfoRequest `json:"shipping" validate:"required"`
	PaymentMethod string              `json:"payment_method,omitempty" validate:"max=50"`
}

// ToShippingInfo converts the request block to the domain model.
func (r ShippingInfoRequest) ToShippingInfo() model.ShippingInfo {
	return model.ShippingInfo{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

// UpdateOrderStatusRequest represents the admin request body for moving
// an order through its lifecycle.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
}

// UpdatePaymentStatusRequest represents the admin request body for
// updating an order's payment state.
type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=pending paid failed refunded"`
	PaymentID     string `json:"payment_id,omitempty" validate:"max=255"`
}

// OrderItemResponse represents an order line in API responses.
type OrderItemResponse struct {
	ID         string           `json:"id"`
	ProductID  string           `json:"product_id"`
	Quantity   int              `json:"quantity"`
	UnitPrice  float64          `json:"unit_price"`
	TotalPrice float64          `json:"total_price"`
	Product    *ProductResponse `json:"product,omitempty"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID            string              `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        string              `json:"status"`
	TotalAmount   float64             `json:"total_amount"`
	Shipping      model.ShippingInfo  `json:"shipping"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	PaymentStatus string              `json:"payment_status"`
	Items         []OrderItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderListResponse represents a paginated list of orders.
type OrderListResponse struct {
	Data       []OrderResponse `json:"data"`
	Pagination *Pagination     `json:"pagination"`
}

// ToOrderResponse converts an Order model to OrderResponse DTO.
func ToOrderResponse(order *model.Order) *OrderResponse {
	response := &OrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        string(order.Status),
		TotalAmount:   order.TotalAmount,
		Shipping:      order.Shipping,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: string(order.PaymentStatus),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}

	for _, item := range order.Items {
		itemResponse := OrderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		}
		if item.Product != nil {
			itemResponse.Product = ToProductResponse(item.Product)
		}
		response.Items = append(response.Items, itemResponse)
	}

	return response
}

// ToOrderListResponse converts a slice of Order models.
func ToOrderListResponse(orders []*model.Order, nextCursor string, hasMore bool) *OrderListResponse {
	responses := make([]OrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = *ToOrderResponse(order)
	}
	return &OrderListResponse{
		Data: responses,
		Pagination: &Pagination{
			NextCursor: nextCursor,
			HasMore:    hasMore,
		},
	}
}
