//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chronoshop/chronoshop/internal/model"
	"github.com/chronoshop/chronoshop/internal/testutil"
)

func seedCheckoutFixtures(t *testing.T, ctx context.Context, repo *Repository) (*model.User, *model.Product) {
	t.Helper()

	user := testutil.NewTestUser(t, testutil.UniqueID("buyer"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	categoryID := seedCategory(t, ctx, repo)
	product := testutil.NewTestProduct(t, testutil.UniqueModelNumber("ORD"), categoryID)
	product.Price = 100.00
	product.StockQuantity = 5
	if err := repo.CreateProduct(ctx, product); err != nil {
		t.Fatalf("create product: %v", err)
	}

	return user, product
}

func newTestOrder(user *model.User, items []*model.OrderItem) *model.Order {
	now := time.Now().UTC()
	return &model.Order{
		ID:          testutil.UniqueID("order"),
		OrderNumber: testutil.UniqueID("ORD"),
		UserID:      user.ID,
		Status:      model.OrderStatusPending,
		Shipping: model.ShippingInfo{
			Name:       "Test Buyer",
			Email:      user.Email,
			Address:    "1 Test Street",
			City:       "Testville",
			PostalCode: "12345",
			Country:    "US",
		},
		PaymentMethod: "card",
		PaymentStatus: model.PaymentStatusPending,
		Items:         items,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestIntegrationOrderRepository_PlaceOrder(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user, product := seedCheckoutFixtures(t, ctx, repo)

	cartItem := &model.CartItem{
		ID:        testutil.UniqueID("cart"),
		UserID:    user.ID,
		ProductID: product.ID,
		Quantity:  2,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.UpsertCartItem(ctx, cartItem); err != nil {
		t.Fatalf("upsert cart item: %v", err)
	}

	order := newTestOrder(user, []*model.OrderItem{
		{ID: testutil.UniqueID("item"), ProductID: product.ID, Quantity: 2},
	})

	if err := repo.PlaceOrder(ctx, order); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if order.TotalAmount != 200.00 {
		t.Errorf("TotalAmount = %v, want 200.00", order.TotalAmount)
	}
	if order.Items[0].UnitPrice != 100.00 {
		t.Errorf("UnitPrice = %v, want 100.00 (snapshot of product price)", order.Items[0].UnitPrice)
	}

	// Stock decremented
	updated, err := repo.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if updated.StockQuantity != 3 {
		t.Errorf("StockQuantity = %d, want 3", updated.StockQuantity)
	}

	// Cart cleared
	items, err := repo.GetCartItems(ctx, user.ID)
	if err != nil {
		t.Fatalf("get cart items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("cart should be empty after checkout, has %d items", len(items))
	}

	// Order persisted with items
	retrieved, err := repo.GetOrderByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrderByID failed: %v", err)
	}
	if len(retrieved.Items) != 1 {
		t.Fatalf("order items = %d, want 1", len(retrieved.Items))
	}
	if retrieved.Items[0].TotalPrice != 200.00 {
		t.Errorf("item TotalPrice = %v, want 200.00", retrieved.Items[0].TotalPrice)
	}
}

func TestIntegrationOrderRepository_PlaceOrder_InsufficientStock(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user, product := seedCheckoutFixtures(t, ctx, repo)

	order := newTestOrder(user, []*model.OrderItem{
		{ID: testutil.UniqueID("item"), ProductID: product.ID, Quantity: 99},
	})

	err := repo.PlaceOrder(ctx, order)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got: %v", err)
	}

	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatal("expected StockError")
	}
	if stockErr.Available != 5 {
		t.Errorf("Available = %d, want 5", stockErr.Available)
	}

	// Nothing persisted, stock untouched
	updated, err := repo.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if updated.StockQuantity != 5 {
		t.Errorf("StockQuantity = %d, want 5 (rollback)", updated.StockQuantity)
	}
	if _, err := repo.GetOrderByID(ctx, order.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("order should not exist, got: %v", err)
	}
}

func TestIntegrationOrderRepository_PlaceOrder_InactiveProduct(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user, product := seedCheckoutFixtures(t, ctx, repo)

	product.IsActive = false
	if err := repo.UpdateProduct(ctx, product); err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	order := newTestOrder(user, []*model.OrderItem{
		{ID: testutil.UniqueID("item"), ProductID: product.ID, Quantity: 1},
	})

	if err := repo.PlaceOrder(ctx, order); !errors.Is(err, ErrProductUnavailable) {
		t.Errorf("expected ErrProductUnavailable, got: %v", err)
	}
}

func TestIntegrationOrderRepository_CancelRestoresStock(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user, product := seedCheckoutFixtures(t, ctx, repo)

	order := newTestOrder(user, []*model.OrderItem{
		{ID: testutil.UniqueID("item"), ProductID: product.ID, Quantity: 3},
	})
	if err := repo.PlaceOrder(ctx, order); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	cancelled, err := repo.CancelOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if cancelled.Status != model.OrderStatusCancelled {
		t.Errorf("Status = %s, want cancelled", cancelled.Status)
	}

	updated, err := repo.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if updated.StockQuantity != 5 {
		t.Errorf("StockQuantity = %d, want 5 after restore", updated.StockQuantity)
	}

	// Cancelled orders cannot be cancelled again
	if _, err := repo.CancelOrder(ctx, order.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got: %v", err)
	}
}

func TestIntegrationOrderRepository_StatusTransitions(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user, product := seedCheckoutFixtures(t, ctx, repo)

	order := newTestOrder(user, []*model.OrderItem{
		{ID: testutil.UniqueID("item"), ProductID: product.ID, Quantity: 1},
	})
	if err := repo.PlaceOrder(ctx, order); err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	// pending -> shipped skips confirmed and must fail
	if _, err := repo.UpdateOrderStatus(ctx, order.ID, model.OrderStatusShipped); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition for pending -> shipped, got: %v", err)
	}

	for _, next := range []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
	} {
		updated, err := repo.UpdateOrderStatus(ctx, order.ID, next)
		if err != nil {
			t.Fatalf("UpdateOrderStatus to %s failed: %v", next, err)
		}
		if updated.Status != next {
			t.Errorf("Status = %s, want %s", updated.Status, next)
		}
	}

	// Delivered is terminal
	if _, err := repo.UpdateOrderStatus(ctx, order.ID, model.OrderStatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition from delivered, got: %v", err)
	}
}

func TestIntegrationOrderRepository_ListOrdersByUser(t *testing.T) {
	ctx, repo := newTestEnv(t)
	user, product := seedCheckoutFixtures(t, ctx, repo)

	for i := 0; i < 3; i++ {
		order := newTestOrder(user, []*model.OrderItem{
			{ID: testutil.UniqueID("item"), ProductID: product.ID, Quantity: 1},
		})
		if err := repo.PlaceOrder(ctx, order); err != nil {
			t.Fatalf("PlaceOrder %d failed: %v", i, err)
		}
	}

	page1, cursor, err := repo.ListOrdersByUser(ctx, user.ID, "", 2)
	if err != nil {
		t.Fatalf("ListOrdersByUser failed: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("page 1 length = %d, want 2", len(page1))
	}
	if cursor == "" {
		t.Fatal("expected cursor after page 1")
	}

	page2, _, err := repo.ListOrdersByUser(ctx, user.ID, cursor, 2)
	if err != nil {
		t.Fatalf("ListOrdersByUser (page 2) failed: %v", err)
	}
	if len(page2) != 1 {
		t.Errorf("page 2 length = %d, want 1", len(page2))
	}
}
