package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIPRateLimit_Burst(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	// Burst of 2 at 1 req/s: two immediate requests pass, third is denied.
	for i := 0; i < 2; i++ {
		result, err := c.CheckIPRateLimit(ctx, "10.0.0.1", 1, 2)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}

	result, err := c.CheckIPRateLimit(ctx, "10.0.0.1", 1, 2)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Greater(t, int64(result.RetryAfter), int64(0))
}

func TestCheckIPRateLimit_IndependentBuckets(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	first, err := c.CheckIPRateLimit(ctx, "10.0.0.1", 1, 1)
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	// A different IP has its own bucket.
	other, err := c.CheckIPRateLimit(ctx, "10.0.0.2", 1, 1)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestCheckUserRateLimit_UnlimitedWhenZero(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	for i := 0; i < 10; i++ {
		result, err := c.CheckUserRateLimit(ctx, "user-1", 0, 5)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}
