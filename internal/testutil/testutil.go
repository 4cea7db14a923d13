package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/chronoshop/chronoshop/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// tablesInDropOrder lists every application table, children first so the
// drops do not trip foreign keys.
var tablesInDropOrder = []string{
	"webhook_deliveries",
	"webhook_endpoints",
	"daily_product_stats",
	"view_events",
	"order_items",
	"orders",
	"cart_items",
	"products",
	"categories",
	"users",
}

// DropSchema removes every application table. Pair with Repository.Migrate
// to get a clean schema in tests.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range tablesInDropOrder {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}
	return nil
}

// TruncateAll empties every application table without touching the schema.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range tablesInDropOrder {
		if _, err := pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return fmt.Errorf("truncate table %s: %w", table, err)
		}
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:             UniqueID("user"),
		Username:       username,
		Email:          username + "@example.com",
		FullName:       "Test User",
		HashedPassword: "$2a$04$invalidinvalidinvalidinvalidinvalidinvalidinvalidinv",
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewTestCategory creates a test category with sensible defaults.
func NewTestCategory(t testing.TB, name string) *model.Category {
	t.Helper()
	return &model.Category{
		ID:          UniqueID("cat"),
		Name:        name,
		Description: "Test category " + name,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
}

// NewTestProduct creates a test product with sensible defaults.
func NewTestProduct(t testing.TB, modelNumber, categoryID string) *model.Product {
	t.Helper()
	now := time.Now().UTC()
	return &model.Product{
		ID:            UniqueID("prod"),
		Name:          "Test Watch " + modelNumber,
		ModelNumber:   modelNumber,
		Description:   "A watch used in tests",
		Price:         199.99,
		StockQuantity: 10,
		CategoryID:    categoryID,
		MovementType:  "Automatic",
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewTestViewEvent creates a test view event with sensible defaults.
func NewTestViewEvent(t testing.TB, productID string) *model.ViewEvent {
	t.Helper()
	now := time.Now().UTC()
	return &model.ViewEvent{
		ID:          UniqueID("view"),
		EventID:     UniqueID("event"),
		ProductID:   productID,
		Referrer:    "https://example.com/catalog",
		UserAgent:   "test-agent/1.0",
		VisitorHash: "abcdef0123456789",
		ViewedAt:    now,
		CreatedAt:   now,
	}
}

// UniqueModelNumber generates a unique model number for tests.
func UniqueModelNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
