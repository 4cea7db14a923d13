package model

import "testing"

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusConfirmed, OrderStatusCancelled, true},
		{OrderStatusConfirmed, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestOrderStatus_IsValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled} {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if OrderStatus("returned").IsValid() {
		t.Error("unknown status should be invalid")
	}
}

func TestOrder_IsCancellable(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusPending, true},
		{OrderStatusConfirmed, true},
		{OrderStatusShipped, false},
		{OrderStatusDelivered, false},
		{OrderStatusCancelled, false},
	}

	for _, tt := range tests {
		o := Order{Status: tt.status}
		if got := o.IsCancellable(); got != tt.want {
			t.Errorf("IsCancellable(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestBuildCart(t *testing.T) {
	items := []*CartItem{
		{Quantity: 2, Product: &Product{Price: 195.00}},
		{Quantity: 1, Product: &Product{Price: 425.00}},
	}

	cart := BuildCart("user-1", items)

	if cart.ItemCount != 3 {
		t.Errorf("ItemCount = %d, want 3", cart.ItemCount)
	}
	if cart.Subtotal != 815.00 {
		t.Errorf("Subtotal = %v, want 815.00", cart.Subtotal)
	}
}
