package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/chronoshop/chronoshop/internal/model"
)

// ErrCartItemNotFound is returned when a cart line does not exist.
var ErrCartItemNotFound = errors.New("cart item not found")

// UpsertCartItem adds a product to a user's cart. If the product is
// already in the cart the quantity is incremented instead.
func (r *Repository) UpsertCartItem(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.Quantity,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return nil
}

// GetCartItems retrieves a user's cart lines joined with their products.
func (r *Repository) GetCartItems(ctx context.Context, userID string) ([]*model.CartItem, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
			p.id, p.name, p.model_number, p.description, p.price, p.original_price, p.stock_quantity, p.category_id,
			p.movement_type, p.case_material, p.case_diameter, p.water_resistance, p.strap_material,
			p.main_image_url, p.detail_image_url, p.lifestyle_image_url,
			p.is_active, p.is_featured, p.is_on_sale, p.deleted_at, p.view_count, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	defer rows.Close()

	var items []*model.CartItem
	for rows.Next() {
		item, err := r.scanCartItemWithProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// GetCartItem retrieves a single cart line owned by a user.
func (r *Repository) GetCartItem(ctx context.Context, userID, itemID string) (*model.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE id = $1 AND user_id = $2
	`

	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, itemID, userID).Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}

	return &item, nil
}

// UpdateCartItemQuantity sets the quantity of a cart line.
func (r *Repository) UpdateCartItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query, itemID, userID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// DeleteCartItem removes a single line from a user's cart.
func (r *Repository) DeleteCartItem(ctx context.Context, userID, itemID string) error {
	query := `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// ClearCart removes every line from a user's cart.
func (r *Repository) ClearCart(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *Repository) scanCartItemWithProduct(rows pgx.Rows) (*model.CartItem, error) {
	var item model.CartItem
	var p model.Product
	var originalPrice *float64

	err := rows.Scan(
		&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
		&p.ID, &p.Name, &p.ModelNumber, &p.Description, &p.Price, &originalPrice, &p.StockQuantity, &p.CategoryID,
		&p.MovementType, &p.CaseMaterial, &p.CaseDiameter, &p.WaterResistance, &p.StrapMaterial,
		&p.MainImageURL, &p.DetailImageURL, &p.LifestyleImageURL,
		&p.IsActive, &p.IsFeatured, &p.IsOnSale, &p.DeletedAt, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if originalPrice != nil {
		p.OriginalPrice = *originalPrice
	}
	item.Product = &p
	return &item, nil
}
