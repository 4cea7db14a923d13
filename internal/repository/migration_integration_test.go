//go:build integration

package repository

import (
	"testing"
	"time"

	"github.com/chronoshop/chronoshop/internal/model"
	"github.com/chronoshop/chronoshop/internal/testutil"
)

func TestIntegrationMigrate_Idempotent(t *testing.T) {
	ctx, repo := newTestEnv(t)

	// newTestEnv already migrated once; a second run must be a no-op.
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	expectedTables := []string{
		"users", "categories", "products", "cart_items",
		"orders", "order_items", "view_events", "daily_product_stats",
		"webhook_endpoints", "webhook_deliveries",
	}

	for _, table := range expectedTables {
		var exists bool
		err := repo.Pool().QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)
		`, table).Scan(&exists)
		if err != nil {
			t.Fatalf("check table %s: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s missing after migration", table)
		}
	}
}

func TestIntegrationSeed(t *testing.T) {
	ctx, repo := newTestEnv(t)

	hash := func(password string) (string, error) {
		return "hashed:" + password, nil
	}

	if err := repo.Seed(ctx, hash); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	categories, err := repo.ListCategories(ctx, false)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 4 {
		t.Errorf("categories = %d, want 4", len(categories))
	}

	products, err := repo.CountProducts(ctx)
	if err != nil {
		t.Fatalf("count products: %v", err)
	}
	if products != 7 {
		t.Errorf("products = %d, want 7", products)
	}

	admin, err := repo.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if !admin.IsAdmin {
		t.Error("admin user should have IsAdmin set")
	}

	if _, err := repo.GetUserByUsername(ctx, "demo"); err != nil {
		t.Errorf("demo user missing: %v", err)
	}

	// Seeded flagship is retrievable by model number
	diver, err := repo.GetProductByModelNumber(ctx, "SNE497")
	if err != nil {
		t.Fatalf("get SNE497: %v", err)
	}
	if diver.Price != 295.00 || diver.OriginalPrice != 350.00 {
		t.Errorf("SNE497 pricing = %v/%v, want 295.00/350.00", diver.Price, diver.OriginalPrice)
	}

	// Second run is a no-op
	if err := repo.Seed(ctx, hash); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	products, err = repo.CountProducts(ctx)
	if err != nil {
		t.Fatalf("count products: %v", err)
	}
	if products != 7 {
		t.Errorf("products after reseed = %d, want 7", products)
	}
}

func TestIntegrationViewEventRepository(t *testing.T) {
	ctx, repo := newTestEnv(t)
	_, product := seedCheckoutFixtures(t, ctx, repo)

	events := repoViewEvents(t, product.ID, 3)
	viewRepo := NewViewEventRepository(repo)

	if err := viewRepo.BulkInsert(ctx, events); err != nil {
		t.Fatalf("BulkInsert failed: %v", err)
	}

	// Re-inserting the same events is idempotent on event_id
	if err := viewRepo.BulkInsert(ctx, events); err != nil {
		t.Fatalf("second BulkInsert failed: %v", err)
	}

	if err := viewRepo.UpdateDailyStats(ctx, events); err != nil {
		t.Fatalf("UpdateDailyStats failed: %v", err)
	}

	from := time.Now().UTC().Add(-24 * time.Hour)
	to := time.Now().UTC().Add(24 * time.Hour)

	stats, err := viewRepo.GetDailyStats(ctx, product.ID, from, to)
	if err != nil {
		t.Fatalf("GetDailyStats failed: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("stats rows = %d, want 1", len(stats))
	}
	if stats[0].TotalViews != 3 {
		t.Errorf("TotalViews = %d, want 3", stats[0].TotalViews)
	}
	if stats[0].UniqueVisitors != 3 {
		t.Errorf("UniqueVisitors = %d, want 3", stats[0].UniqueVisitors)
	}

	summary, err := viewRepo.GetStatsSummary(ctx, product.ID, from, to)
	if err != nil {
		t.Fatalf("GetStatsSummary failed: %v", err)
	}
	if summary.TotalViews != 3 {
		t.Errorf("summary TotalViews = %d, want 3", summary.TotalViews)
	}
}

func repoViewEvents(t *testing.T, productID string, n int) []*model.ViewEvent {
	t.Helper()
	events := make([]*model.ViewEvent, 0, n)
	for i := 0; i < n; i++ {
		event := testutil.NewTestViewEvent(t, productID)
		event.VisitorHash = testutil.UniqueID("visitor")
		events = append(events, event)
	}
	return events
}
