package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/chronoshop/chronoshop/internal/metrics"
	"github.com/chronoshop/chronoshop/internal/model"
	"github.com/chronoshop/chronoshop/internal/repository"
)

// Order service errors.
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidShipping      = errors.New("invalid shipping information")
	ErrOrderNotCancellable  = errors.New("order can no longer be cancelled")
	ErrInvalidOrderStatus   = errors.New("invalid order status")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
)

// OrderEvents publishes order lifecycle events to registered webhook
// endpoints. Delivery is asynchronous; publishing only enqueues.
type OrderEvents interface {
	PublishOrderCreated(ctx context.Context, order *model.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *model.Order, previous model.OrderStatus) error
}

// shippingEmailRegex mirrors the loose account email check.
var shippingEmailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// OrderService handles checkout and order lifecycle logic.
type OrderService struct {
	repo    *repository.Repository
	events  OrderEvents
	metrics metrics.Recorder
}

// NewOrderService creates a new OrderService.
func NewOrderService(repo *repository.Repository, events OrderEvents, recorder metrics.Recorder) *OrderService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &OrderService{
		repo:    repo,
		events:  events,
		metrics: recorder,
	}
}

// CheckoutInput defines input for placing an order.
type CheckoutInput struct {
	UserID        string
	Shipping      model.ShippingInfo
	PaymentMethod string
}

// Checkout places an order from the user's current cart contents.
// Stock verification, decrement, price snapshots, order creation and
// cart clearing all happen in a single transaction.
func (s *OrderService) Checkout(ctx context.Context, input CheckoutInput) (*model.Order, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveCheckoutDuration(time.Since(start))
	}()

	if err := validateShipping(input.Shipping); err != nil {
		return nil, err
	}

	cartItems, err := s.repo.GetCartItems(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]*model.OrderItem, 0, len(cartItems))
	for _, line := range cartItems {
		items = append(items, &model.OrderItem{
			ID:        uuid.NewString(),
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	order := &model.Order{
		ID:            uuid.NewString(),
		OrderNumber:   newOrderNumber(),
		UserID:        input.UserID,
		Status:        model.OrderStatusPending,
		Shipping:      input.Shipping,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: model.PaymentStatusPending,
		Items:         items,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := s.repo.PlaceOrder(ctx, order); err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, err // carries *StockError detail
		case errors.Is(err, repository.ErrProductNotFound),
			errors.Is(err, repository.ErrProductUnavailable):
			return nil, ErrProductUnavailable
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.metrics.IncOrderPlaced()

	if s.events != nil {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			// Webhook fan-out must never fail checkout
			_ = err
		}
	}

	return order, nil
}

// GetOrder retrieves an order. Non-admin callers only see their own.
func (s *OrderService) GetOrder(ctx context.Context, id, userID string, isAdmin bool) (*model.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		// Hide other users' orders entirely
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrdersInput defines input for listing a user's orders.
type ListOrdersInput struct {
	UserID string
	Cursor string
	Limit  int
}

// ListOrdersOutput defines output for listing orders.
type ListOrdersOutput struct {
	Orders     []*model.Order
	NextCursor string
	HasMore    bool
}

// ListOrders retrieves a paginated list of the user's orders.
func (s *OrderService) ListOrders(ctx context.Context, input ListOrdersInput) (*ListOrdersOutput, error) {
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}

	orders, nextCursor, err := s.repo.ListOrdersByUser(ctx, input.UserID, input.Cursor, input.Limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}

	return &ListOrdersOutput{
		Orders:     orders,
		NextCursor: nextCursor,
		HasMore:    nextCursor != "",
	}, nil
}

// CancelOrder cancels an order and restores stock. Only the owner (or
// an admin) may cancel, and only before shipment.
func (s *OrderService) CancelOrder(ctx context.Context, id, userID string, isAdmin bool) (*model.Order, error) {
	existing, err := s.GetOrder(ctx, id, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	previous := existing.Status

	order, err := s.repo.CancelOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, ErrOrderNotCancellable
		}
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	s.metrics.IncOrderCancelled()

	if s.events != nil {
		_ = s.events.PublishOrderStatusChanged(ctx, order, previous)
	}

	return order, nil
}

// UpdateStatus moves an order through its lifecycle (admin only).
func (s *OrderService) UpdateStatus(ctx context.Context, id string, next model.OrderStatus) (*model.Order, error) {
	if !next.IsValid() {
		return nil, ErrInvalidOrderStatus
	}

	existing, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	previous := existing.Status

	// Cancellation restores stock, which UpdateOrderStatus does not do
	if next == model.OrderStatusCancelled {
		order, err := s.repo.CancelOrder(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrInvalidTransition) {
				return nil, ErrInvalidTransition
			}
			return nil, err
		}
		s.metrics.IncOrderCancelled()
		if s.events != nil {
			_ = s.events.PublishOrderStatusChanged(ctx, order, previous)
		}
		return order, nil
	}

	order, err := s.repo.UpdateOrderStatus(ctx, id, next)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil, ErrInvalidTransition
		}
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if s.events != nil {
		_ = s.events.PublishOrderStatusChanged(ctx, order, previous)
	}

	return order, nil
}

// SetPaymentStatus updates the payment state of an order (admin only).
func (s *OrderService) SetPaymentStatus(ctx context.Context, id string, status model.PaymentStatus, paymentID string) (*model.Order, error) {
	if !status.IsValid() {
		return nil, ErrInvalidPaymentStatus
	}

	if err := s.repo.SetPaymentStatus(ctx, id, status, paymentID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// newOrderNumber generates a human-facing order number.
// ULIDs sort by creation time, which keeps order numbers roughly
// sequential without a database counter.
func newOrderNumber() string {
	return "ORD-" + ulid.Make().String()
}

// validateShipping checks the required shipping fields.
func validateShipping(info model.ShippingInfo) error {
	required := []string{info.Name, info.Email, info.Address, info.City, info.PostalCode, info.Country}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return ErrInvalidShipping
		}
	}
	if !shippingEmailRegex.MatchString(info.Email) {
		return ErrInvalidShipping
	}
	return nil
}
