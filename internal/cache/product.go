package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chronoshop/chronoshop/internal/model"
)

// Cache key prefixes and TTLs.
const (
	productKeyPrefix  = "product:"
	negCacheKeySuffix = ":neg"

	// DefaultProductTTL is the TTL for cached product data.
	DefaultProductTTL = 1 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetProduct retrieves a product from cache by ID.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetProduct(ctx context.Context, productID string) (*model.CachedProduct, error) {
	key := productKeyPrefix + productID

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedProduct{
		Name:          result["name"],
		ModelNumber:   result["model_number"],
		Price:         result["price"],
		OriginalPrice: result["original_price"],
		StockQuantity: result["stock_quantity"],
		CategoryID:    result["category_id"],
		MainImageURL:  result["main_image_url"],
		IsActive:      result["is_active"],
		IsFeatured:    result["is_featured"],
		IsOnSale:      result["is_on_sale"],
		DeletedAt:     result["deleted_at"],
		UpdatedAt:     result["updated_at"],
	}

	return cached, nil
}

// SetProduct stores a product in cache.
func (c *Cache) SetProduct(ctx context.Context, product *model.Product) error {
	key := productKeyPrefix + product.ID
	cached := product.ToCachedProduct()

	fields := map[string]any{
		"name":           cached.Name,
		"model_number":   cached.ModelNumber,
		"price":          cached.Price,
		"stock_quantity": cached.StockQuantity,
		"category_id":    cached.CategoryID,
		"main_image_url": cached.MainImageURL,
		"is_active":      cached.IsActive,
		"is_featured":    cached.IsFeatured,
		"is_on_sale":     cached.IsOnSale,
		"updated_at":     cached.UpdatedAt,
	}

	// Only set optional fields if they have values
	if cached.OriginalPrice != "" {
		fields["original_price"] = cached.OriginalPrice
	}
	if cached.DeletedAt != "" {
		fields["deleted_at"] = cached.DeletedAt
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, DefaultProductTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to cache product: %w", err)
	}

	// Remove negative cache if exists
	c.client.Del(ctx, key+negCacheKeySuffix)

	return nil
}

// DeleteProduct removes a product from cache. Called after any write so
// the next read repopulates from the database.
func (c *Cache) DeleteProduct(ctx context.Context, productID string) error {
	key := productKeyPrefix + productID

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a product ID is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, productID string) (bool, error) {
	key := productKeyPrefix + productID + negCacheKeySuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a product ID as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, productID string) error {
	key := productKeyPrefix + productID + negCacheKeySuffix

	err := c.client.SetEx(ctx, key, "", NegativeCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
