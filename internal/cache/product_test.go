package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronoshop/chronoshop/internal/model"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFromClient(client), mr
}

func testProduct() *model.Product {
	return &model.Product{
		ID:            "prod-1",
		Name:          "Seiko Prospex Solar Diver",
		ModelNumber:   "SNE497",
		Price:         295.00,
		OriginalPrice: 350.00,
		StockQuantity: 15,
		CategoryID:    "cat-1",
		MainImageURL:  "https://example.com/main.jpg",
		IsActive:      true,
		IsFeatured:    true,
		IsOnSale:      true,
		UpdatedAt:     time.Now().UTC(),
	}
}

func TestCache_SetAndGetProduct(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	product := testProduct()
	require.NoError(t, c.SetProduct(ctx, product))

	cached, err := c.GetProduct(ctx, product.ID)
	require.NoError(t, err)

	restored := cached.ToProduct(product.ID)
	assert.Equal(t, product.Name, restored.Name)
	assert.Equal(t, product.ModelNumber, restored.ModelNumber)
	assert.Equal(t, product.Price, restored.Price)
	assert.Equal(t, product.OriginalPrice, restored.OriginalPrice)
	assert.Equal(t, product.StockQuantity, restored.StockQuantity)
	assert.True(t, restored.IsActive)
	assert.True(t, restored.IsOnSale)
}

func TestCache_GetProductMiss(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	_, err := c.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	product := testProduct()
	require.NoError(t, c.SetProduct(ctx, product))
	require.NoError(t, c.DeleteProduct(ctx, product.ID))

	_, err := c.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCache_NegativeCache(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	negative, err := c.IsNegativelyCached(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, negative)

	require.NoError(t, c.SetNegativeCache(ctx, "ghost"))

	negative, err = c.IsNegativelyCached(ctx, "ghost")
	require.NoError(t, err)
	assert.True(t, negative)
}

func TestCache_SetProductClearsNegativeCache(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	product := testProduct()
	require.NoError(t, c.SetNegativeCache(ctx, product.ID))
	require.NoError(t, c.SetProduct(ctx, product))

	negative, err := c.IsNegativelyCached(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, negative, "caching a product should clear its negative entry")
}

func TestCache_ProductTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	product := testProduct()
	require.NoError(t, c.SetProduct(ctx, product))

	mr.FastForward(DefaultProductTTL + time.Minute)

	_, err := c.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, ErrCacheMiss)
}
