package repository

import (
	"errors"
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	original := &PaginationCursor{
		ID:        "prod-123",
		CreatedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	encoded := encodeCursor(original)
	if encoded == "" {
		t.Fatal("expected non-empty cursor")
	}

	decoded, err := decodeCursor(encoded)
	if err != nil {
		t.Fatalf("decode cursor: %v", err)
	}

	if decoded.ID != original.ID {
		t.Errorf("ID mismatch: got %q, want %q", decoded.ID, original.ID)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt mismatch: got %v, want %v", decoded.CreatedAt, original.CreatedAt)
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"not json", "bm90LWpzb24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeCursor(tt.cursor); err == nil {
				t.Errorf("expected error for cursor %q", tt.cursor)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"unique violation code", errors.New(`ERROR: duplicate key value violates unique constraint "products_model_number_key" (SQLSTATE 23505)`), true},
		{"unrelated error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStockErrorUnwrapsToInsufficientStock(t *testing.T) {
	err := &StockError{ProductID: "prod-1", Requested: 5, Available: 2}

	if !errors.Is(err, ErrInsufficientStock) {
		t.Error("StockError should unwrap to ErrInsufficientStock")
	}

	var stockErr *StockError
	if !errors.As(error(err), &stockErr) {
		t.Fatal("errors.As should match StockError")
	}
	if stockErr.Available != 2 {
		t.Errorf("Available = %d, want 2", stockErr.Available)
	}
}

func TestNullableFloat(t *testing.T) {
	if nullableFloat(0) != nil {
		t.Error("zero should map to nil")
	}
	if v := nullableFloat(350); v == nil || *v != 350 {
		t.Errorf("expected pointer to 350, got %v", v)
	}
}
