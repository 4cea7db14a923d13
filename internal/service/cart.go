package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chronoshop/chronoshop/internal/model"
	"github.com/chronoshop/chronoshop/internal/repository"
)

// Cart service errors.
var (
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrProductUnavailable   = errors.New("product is not available for purchase")
	ErrQuantityExceedsStock = errors.New("quantity exceeds available stock")
)

// maxCartLineQuantity bounds a single cart line.
const maxCartLineQuantity = 99

// CartService handles shopping cart business logic.
type CartService struct {
	repo *repository.Repository
}

// NewCartService creates a new CartService.
func NewCartService(repo *repository.Repository) *CartService {
	return &CartService{repo: repo}
}

// GetCart returns the user's cart with joined product detail and totals.
func (s *CartService) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	items, err := s.repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return model.BuildCart(userID, items), nil
}

// AddItem adds a product to the cart. Adding a product that is already
// in the cart merges quantities.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	if quantity < 1 || quantity > maxCartLineQuantity {
		return nil, ErrInvalidQuantity
	}

	product, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.IsPurchasable() {
		return nil, ErrProductUnavailable
	}
	if quantity > product.StockQuantity {
		return nil, ErrQuantityExceedsStock
	}

	item := &model.CartItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.UpsertCartItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return s.GetCart(ctx, userID)
}

// UpdateItemQuantity sets the quantity of a cart line. Quantity 0
// removes the line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*model.Cart, error) {
	if quantity < 0 || quantity > maxCartLineQuantity {
		return nil, ErrInvalidQuantity
	}

	if quantity == 0 {
		if err := s.repo.DeleteCartItem(ctx, userID, itemID); err != nil {
			if errors.Is(err, repository.ErrCartItemNotFound) {
				return nil, ErrCartItemNotFound
			}
			return nil, err
		}
		return s.GetCart(ctx, userID)
	}

	item, err := s.repo.GetCartItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	product, err := s.repo.GetProductByID(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !product.IsPurchasable() {
		return nil, ErrProductUnavailable
	}
	if quantity > product.StockQuantity {
		return nil, ErrQuantityExceedsStock
	}

	if err := s.repo.UpdateCartItemQuantity(ctx, userID, itemID, quantity); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem deletes a cart line.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*model.Cart, error) {
	if err := s.repo.DeleteCartItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// Clear empties the user's cart.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.repo.ClearCart(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
