package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chronoshop/chronoshop/internal/model"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"empty", "", ErrWeakPassword},
		{"too_short", "Ab1", ErrWeakPassword},
		{"no_upper", "password123", ErrWeakPassword},
		{"no_lower", "PASSWORD123", ErrWeakPassword},
		{"no_digit", "PasswordOnly", ErrWeakPassword},
		{"too_long", "Aa1" + strings.Repeat("x", 80), ErrWeakPassword},
		{"valid", "Password123", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := validatePasswordStrength(test.password)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	svc := &AuthService{}

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name: "invalid_username",
			input: RegisterInput{
				Username: "a!",
				Email:    "user@example.com",
				Password: "Password123",
			},
			wantErr: ErrInvalidUsername,
		},
		{
			name: "invalid_email",
			input: RegisterInput{
				Username: "valid_user",
				Email:    "not-an-email",
				Password: "Password123",
			},
			wantErr: ErrInvalidEmail,
		},
		{
			name: "weak_password",
			input: RegisterInput{
				Username: "valid_user",
				Email:    "user@example.com",
				Password: "weak",
			},
			wantErr: ErrWeakPassword,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestCreateProductValidationErrors(t *testing.T) {
	svc := &CatalogService{}

	tests := []struct {
		name    string
		input   CreateProductInput
		wantErr error
	}{
		{
			name: "empty_name",
			input: CreateProductInput{
				Name:  "  ",
				Price: 100,
			},
			wantErr: ErrInvalidProductName,
		},
		{
			name: "zero_price",
			input: CreateProductInput{
				Name:  "Prospex Diver",
				Price: 0,
			},
			wantErr: ErrInvalidPrice,
		},
		{
			name: "negative_stock",
			input: CreateProductInput{
				Name:          "Prospex Diver",
				Price:         100,
				StockQuantity: -1,
			},
			wantErr: ErrInvalidStock,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestCartQuantityValidation(t *testing.T) {
	svc := &CartService{}

	if _, err := svc.AddItem(context.Background(), "user", "product", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := svc.AddItem(context.Background(), "user", "product", maxCartLineQuantity+1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := svc.UpdateItemQuantity(context.Background(), "user", "item", -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestValidateShipping(t *testing.T) {
	valid := model.ShippingInfo{
		Name:       "Demo User",
		Email:      "demo@example.com",
		Address:    "1 Infinite Loop",
		City:       "Cupertino",
		PostalCode: "95014",
		Country:    "US",
	}

	if err := validateShipping(valid); err != nil {
		t.Fatalf("expected valid shipping, got %v", err)
	}

	missing := valid
	missing.Address = ""
	if err := validateShipping(missing); !errors.Is(err, ErrInvalidShipping) {
		t.Fatalf("expected ErrInvalidShipping, got %v", err)
	}

	badEmail := valid
	badEmail.Email = "not-an-email"
	if err := validateShipping(badEmail); !errors.Is(err, ErrInvalidShipping) {
		t.Fatalf("expected ErrInvalidShipping, got %v", err)
	}
}

func TestNewOrderNumber(t *testing.T) {
	n1 := newOrderNumber()
	n2 := newOrderNumber()

	if !strings.HasPrefix(n1, "ORD-") {
		t.Fatalf("order number %q missing ORD- prefix", n1)
	}
	if len(n1) != len("ORD-")+26 {
		t.Fatalf("order number %q has unexpected length %d", n1, len(n1))
	}
	if n1 == n2 {
		t.Fatal("consecutive order numbers should differ")
	}
}
