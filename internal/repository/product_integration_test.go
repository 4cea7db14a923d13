//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/chronoshop/chronoshop/internal/testutil"
)

func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	ctx := context.Background()

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.DropSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("drop schema: %v", err)
	}
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return ctx, repo
}

func seedCategory(t *testing.T, ctx context.Context, repo *Repository) string {
	t.Helper()
	category := testutil.NewTestCategory(t, testutil.UniqueID("Divers"))
	if err := repo.CreateCategory(ctx, category); err != nil {
		t.Fatalf("create category: %v", err)
	}
	return category.ID
}

func TestIntegrationProductRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newTestEnv(t)
	categoryID := seedCategory(t, ctx, repo)

	product := testutil.NewTestProduct(t, testutil.UniqueModelNumber("SNE"), categoryID)
	product.OriginalPrice = 350.00
	product.IsOnSale = true

	if err := repo.CreateProduct(ctx, product); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	retrieved, err := repo.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProductByID failed: %v", err)
	}

	if retrieved.ModelNumber != product.ModelNumber {
		t.Errorf("ModelNumber mismatch: got %q, want %q", retrieved.ModelNumber, product.ModelNumber)
	}
	if retrieved.OriginalPrice != 350.00 {
		t.Errorf("OriginalPrice = %v, want 350.00", retrieved.OriginalPrice)
	}
	if !retrieved.IsOnSale {
		t.Error("IsOnSale should be true")
	}

	byModel, err := repo.GetProductByModelNumber(ctx, product.ModelNumber)
	if err != nil {
		t.Fatalf("GetProductByModelNumber failed: %v", err)
	}
	if byModel.ID != product.ID {
		t.Errorf("ID mismatch: got %q, want %q", byModel.ID, product.ID)
	}
}

func TestIntegrationProductRepository_DuplicateModelNumber(t *testing.T) {
	ctx, repo := newTestEnv(t)
	categoryID := seedCategory(t, ctx, repo)

	modelNumber := testutil.UniqueModelNumber("DUP")
	first := testutil.NewTestProduct(t, modelNumber, categoryID)
	second := testutil.NewTestProduct(t, modelNumber, categoryID)

	if err := repo.CreateProduct(ctx, first); err != nil {
		t.Fatalf("CreateProduct (first) failed: %v", err)
	}

	if err := repo.CreateProduct(ctx, second); !errors.Is(err, ErrModelNumberExists) {
		t.Errorf("expected ErrModelNumberExists, got: %v", err)
	}
}

func TestIntegrationProductRepository_ListPagination(t *testing.T) {
	ctx, repo := newTestEnv(t)
	categoryID := seedCategory(t, ctx, repo)

	for i := 0; i < 5; i++ {
		product := testutil.NewTestProduct(t, testutil.UniqueModelNumber("PAGE"), categoryID)
		if err := repo.CreateProduct(ctx, product); err != nil {
			t.Fatalf("CreateProduct %d failed: %v", i, err)
		}
	}

	page1, cursor, err := repo.ListProducts(ctx, ProductFilter{}, "", 3)
	if err != nil {
		t.Fatalf("ListProducts (page 1) failed: %v", err)
	}
	if len(page1) != 3 {
		t.Fatalf("page 1 length = %d, want 3", len(page1))
	}
	if cursor == "" {
		t.Fatal("expected non-empty cursor after page 1")
	}

	page2, cursor2, err := repo.ListProducts(ctx, ProductFilter{}, cursor, 3)
	if err != nil {
		t.Fatalf("ListProducts (page 2) failed: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("page 2 length = %d, want 2", len(page2))
	}
	if cursor2 != "" {
		t.Errorf("expected empty cursor on last page, got %q", cursor2)
	}

	seen := make(map[string]bool)
	for _, p := range append(page1, page2...) {
		if seen[p.ID] {
			t.Errorf("product %s returned twice", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestIntegrationProductRepository_ListFilters(t *testing.T) {
	ctx, repo := newTestEnv(t)
	categoryID := seedCategory(t, ctx, repo)
	otherCategory := seedCategory(t, ctx, repo)

	featured := testutil.NewTestProduct(t, testutil.UniqueModelNumber("FEAT"), categoryID)
	featured.IsFeatured = true
	plain := testutil.NewTestProduct(t, testutil.UniqueModelNumber("PLAIN"), otherCategory)
	outOfStock := testutil.NewTestProduct(t, testutil.UniqueModelNumber("EMPTY"), categoryID)
	outOfStock.StockQuantity = 0

	if err := repo.CreateProduct(ctx, featured); err != nil {
		t.Fatalf("create featured: %v", err)
	}
	if err := repo.CreateProduct(ctx, plain); err != nil {
		t.Fatalf("create plain: %v", err)
	}
	if err := repo.CreateProduct(ctx, outOfStock); err != nil {
		t.Fatalf("create out of stock: %v", err)
	}

	byCategory, _, err := repo.ListProducts(ctx, ProductFilter{CategoryID: otherCategory}, "", 10)
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].ID != plain.ID {
		t.Errorf("category filter returned wrong products: %d", len(byCategory))
	}

	featuredOnly, _, err := repo.ListProducts(ctx, ProductFilter{FeaturedOnly: true}, "", 10)
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if len(featuredOnly) != 1 || featuredOnly[0].ID != featured.ID {
		t.Errorf("featured filter returned wrong products: %d", len(featuredOnly))
	}

	inStock, _, err := repo.ListProducts(ctx, ProductFilter{InStockOnly: true}, "", 10)
	if err != nil {
		t.Fatalf("list in stock: %v", err)
	}
	for _, p := range inStock {
		if p.ID == outOfStock.ID {
			t.Error("in-stock filter returned an out-of-stock product")
		}
	}
}

func TestIntegrationProductRepository_SoftDelete(t *testing.T) {
	ctx, repo := newTestEnv(t)
	categoryID := seedCategory(t, ctx, repo)

	product := testutil.NewTestProduct(t, testutil.UniqueModelNumber("DEL"), categoryID)
	if err := repo.CreateProduct(ctx, product); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	if err := repo.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}

	if _, err := repo.GetProductByID(ctx, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound after delete, got: %v", err)
	}

	if err := repo.DeleteProduct(ctx, product.ID); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("second delete should return ErrProductNotFound, got: %v", err)
	}
}

func TestIntegrationProductRepository_IncrementViewCount(t *testing.T) {
	ctx, repo := newTestEnv(t)
	categoryID := seedCategory(t, ctx, repo)

	product := testutil.NewTestProduct(t, testutil.UniqueModelNumber("VIEW"), categoryID)
	if err := repo.CreateProduct(ctx, product); err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}

	if err := repo.IncrementViewCount(ctx, product.ID, 7); err != nil {
		t.Fatalf("IncrementViewCount failed: %v", err)
	}

	retrieved, err := repo.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProductByID failed: %v", err)
	}
	if retrieved.ViewCount != 7 {
		t.Errorf("ViewCount = %d, want 7", retrieved.ViewCount)
	}
}
