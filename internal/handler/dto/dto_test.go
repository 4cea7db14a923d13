package dto

import (
	"strings"
	"testing"
)

func TestValidateRegisterRequest(t *testing.T) {
	valid := RegisterRequest{
		Username: "demo_user",
		Email:    "demo@example.com",
		Password: "Password123",
	}
	if err := Validate(valid); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	tests := []struct {
		name    string
		req     RegisterRequest
		wantMsg string
	}{
		{
			name:    "missing_username",
			req:     RegisterRequest{Email: "demo@example.com", Password: "Password123"},
			wantMsg: "Username is required",
		},
		{
			name:    "bad_username_chars",
			req:     RegisterRequest{Username: "demo user!", Email: "demo@example.com", Password: "Password123"},
			wantMsg: "letters, numbers, and underscores",
		},
		{
			name:    "bad_email",
			req:     RegisterRequest{Username: "demo_user", Email: "nope", Password: "Password123"},
			wantMsg: "valid email",
		},
		{
			name:    "weak_password",
			req:     RegisterRequest{Username: "demo_user", Email: "demo@example.com", Password: "alllowercase1"},
			wantMsg: "uppercase",
		},
		{
			name:    "short_password",
			req:     RegisterRequest{Username: "demo_user", Email: "demo@example.com", Password: "Ab1"},
			wantMsg: "at least 8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateCheckoutRequest(t *testing.T) {
	valid := CheckoutRequest{
		Shipping: ShippingInfoRequest{
			Name:       "Demo User",
			Email:      "demo@example.com",
			Address:    "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		PaymentMethod: "card",
	}
	if err := Validate(valid); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	missing := valid
	missing.Shipping.City = ""
	if err := Validate(missing); err == nil {
		t.Fatal("expected validation error for missing city")
	}
}

func TestValidateCartRequests(t *testing.T) {
	if err := Validate(AddCartItemRequest{ProductID: "p1", Quantity: 2}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if err := Validate(AddCartItemRequest{ProductID: "p1"}); err == nil {
		t.Fatal("expected error for zero quantity")
	}
	if err := Validate(AddCartItemRequest{Quantity: 1}); err == nil {
		t.Fatal("expected error for missing product_id")
	}
	if err := Validate(UpdateCartItemRequest{Quantity: 100}); err == nil {
		t.Fatal("expected error for quantity over max")
	}
}

func TestValidateOrderStatusRequests(t *testing.T) {
	if err := Validate(UpdateOrderStatusRequest{Status: "shipped"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if err := Validate(UpdateOrderStatusRequest{Status: "teleported"}); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if err := Validate(UpdatePaymentStatusRequest{PaymentStatus: "paid"}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if err := Validate(UpdatePaymentStatusRequest{PaymentStatus: "maybe"}); err == nil {
		t.Fatal("expected error for unknown payment status")
	}
}
