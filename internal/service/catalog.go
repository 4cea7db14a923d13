package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chronoshop/chronoshop/internal/analytics"
	"github.com/chronoshop/chronoshop/internal/assets"
	"github.com/chronoshop/chronoshop/internal/cache"
	"github.com/chronoshop/chronoshop/internal/metrics"
	"github.com/chronoshop/chronoshop/internal/model"
	"github.com/chronoshop/chronoshop/internal/repository"
)

// Catalog service errors.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrModelNumberExists  = errors.New("model number already exists")
	ErrCategoryExists     = errors.New("category name already exists")
	ErrInvalidPrice       = errors.New("price must be positive")
	ErrInvalidStock       = errors.New("stock quantity cannot be negative")
	ErrInvalidProductName = errors.New("product name is required")
	ErrInvalidCategory    = errors.New("category name is required")
	ErrInvalidCursor      = errors.New("invalid pagination cursor")
)

const maxProductNameLength = 255

// CatalogService handles product and category business logic.
type CatalogService struct {
	repo      *repository.Repository
	cache     *cache.Cache
	publisher *analytics.Publisher
	metrics   metrics.Recorder
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo *repository.Repository, cache *cache.Cache, publisher *analytics.Publisher, recorder metrics.Recorder) *CatalogService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &CatalogService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		metrics:   recorder,
	}
}

// GetProduct retrieves a single product for display.
// This is the hot path - optimized for speed with cache-first lookup.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveProductReadDuration(time.Since(start))
	}()

	// Step 1: Try cache
	cached, err := s.cache.GetProduct(ctx, id)
	if err == nil {
		s.metrics.IncProductCacheHit()
		return s.validateVisibleProduct(ctx, cached.ToProduct(id), id)
	}

	// Step 2: Check negative cache
	if errors.Is(err, cache.ErrCacheMiss) {
		s.metrics.IncProductCacheMiss()
		isNegative, _ := s.cache.IsNegativelyCached(ctx, id)
		if isNegative {
			return nil, ErrProductNotFound
		}
	}
	// Redis errors fall through to the DB

	// Step 3: DB lookup
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			_ = s.cache.SetNegativeCache(ctx, id)
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	// Step 4: Backfill cache
	if err := s.cache.SetProduct(ctx, product); err != nil {
		_ = err // Cache backfill is best-effort
	}

	return s.validateVisibleProduct(ctx, product, id)
}

// RecordView publishes a product view event for async processing.
// Fire-and-forget: never blocks or fails the read path.
func (s *CatalogService) RecordView(productID, clientIP, userAgent, referrer string) {
	if s.publisher == nil {
		return
	}
	now := time.Now().UTC()
	s.publisher.PublishAsync(analytics.ViewEventPayload{
		ProductID:   productID,
		Referrer:    analytics.SanitizeReferrer(referrer),
		UserAgent:   analytics.TruncateUserAgent(userAgent),
		VisitorHash: analytics.GenerateVisitorHash(clientIP, userAgent, now),
		ViewedAt:    now.UnixMilli(),
	})
}

// ListProductsInput defines input for listing products.
type ListProductsInput struct {
	CategoryID   string
	FeaturedOnly bool
	OnSaleOnly   bool
	InStockOnly  bool
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
	Status       string
	Cursor       string
	Limit        int
}

// ListProductsOutput defines output for listing products.
type ListProductsOutput struct {
	Products   []*model.Product
	NextCursor string
	HasMore    bool
}

// ListProducts retrieves a paginated product listing.
func (s *CatalogService) ListProducts(ctx context.Context, input ListProductsInput) (*ListProductsOutput, error) {
	// Set defaults
	if input.Limit <= 0 || input.Limit > 100 {
		input.Limit = 20
	}

	filter := repository.ProductFilter{
		CategoryID:   input.CategoryID,
		FeaturedOnly: input.FeaturedOnly,
		OnSaleOnly:   input.OnSaleOnly,
		InStockOnly:  input.InStockOnly,
		Search:       strings.TrimSpace(input.Search),
		MinPrice:     input.MinPrice,
		MaxPrice:     input.MaxPrice,
	}

	products, nextCursor, err := s.repo.ListProducts(ctx, filter, input.Cursor, input.Limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}

	// Filter by computed status if specified
	if input.Status != "" {
		filtered := make([]*model.Product, 0, len(products))
		targetStatus := model.ProductStatus(input.Status)
		for _, product := range products {
			if product.Status() == targetStatus {
				filtered = append(filtered, product)
			}
		}
		products = filtered
	}

	return &ListProductsOutput{
		Products:   products,
		NextCursor: nextCursor,
		HasMore:    nextCursor != "",
	}, nil
}

// ListCategories retrieves categories. Inactive categories are only
// included for admin callers.
func (s *CatalogService) ListCategories(ctx context.Context, includeInactive bool) ([]*model.Category, error) {
	return s.repo.ListCategories(ctx, includeInactive)
}

// GetCategory retrieves a category by ID.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// CreateProductInput defines input for creating a product.
type CreateProductInput struct {
	Name            string
	ModelNumber     string
	Description     string
	Price           float64
	OriginalPrice   float64
	StockQuantity   int
	CategoryID      string
	MovementType    string
	CaseMaterial    string
	CaseDiameter    string
	WaterResistance string
	StrapMaterial   string
	IsFeatured      bool
	IsOnSale        bool
}

// CreateProduct creates a new product (admin only).
// Missing image URLs fall back to deterministic generated ones.
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxProductNameLength {
		return nil, ErrInvalidProductName
	}
	if input.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if input.StockQuantity < 0 {
		return nil, ErrInvalidStock
	}

	// Category must exist
	if _, err := s.repo.GetCategoryByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	product := &model.Product{
		ID:              uuid.NewString(),
		Name:            name,
		ModelNumber:     strings.TrimSpace(input.ModelNumber),
		Description:     input.Description,
		Price:           input.Price,
		OriginalPrice:   input.OriginalPrice,
		StockQuantity:   input.StockQuantity,
		CategoryID:      input.CategoryID,
		MovementType:    input.MovementType,
		CaseMaterial:    input.CaseMaterial,
		CaseDiameter:    input.CaseDiameter,
		WaterResistance: input.WaterResistance,
		StrapMaterial:   input.StrapMaterial,
		IsActive:        true,
		IsFeatured:      input.IsFeatured,
		IsOnSale:        input.IsOnSale,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}

	product.MainImageURL = assets.ProductImage(name, assets.ImageMain).Primary
	product.DetailImageURL = assets.ProductImage(name, assets.ImageDetail).Primary
	product.LifestyleImageURL = assets.ProductImage(name, assets.ImageLifestyle).Primary

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrModelNumberExists) {
			return nil, ErrModelNumberExists
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.metrics.IncProductCreated()

	return product, nil
}

// UpdateProductInput defines input for updating a product.
// Nil fields are left unchanged.
type UpdateProductInput struct {
	ID              string
	Name            *string
	Description     *string
	Price           *float64
	OriginalPrice   *float64
	StockQuantity   *int
	CategoryID      *string
	MovementType    *string
	CaseMaterial    *string
	CaseDiameter    *string
	WaterResistance *string
	StrapMaterial   *string
	IsActive        *bool
	IsFeatured      *bool
	IsOnSale        *bool
}

// UpdateProduct updates a product's mutable fields (admin only).
func (s *CatalogService) UpdateProduct(ctx context.Context, input UpdateProductInput) (*model.Product, error) {
	product, err := s.repo.GetProductByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || len(name) > maxProductNameLength {
			return nil, ErrInvalidProductName
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, ErrInvalidPrice
		}
		product.Price = *input.Price
	}
	if input.OriginalPrice != nil {
		product.OriginalPrice = *input.OriginalPrice
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, ErrInvalidStock
		}
		product.StockQuantity = *input.StockQuantity
	}
	if input.CategoryID != nil {
		if _, err := s.repo.GetCategoryByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		product.CategoryID = *input.CategoryID
	}
	if input.MovementType != nil {
		product.MovementType = *input.MovementType
	}
	if input.CaseMaterial != nil {
		product.CaseMaterial = *input.CaseMaterial
	}
	if input.CaseDiameter != nil {
		product.CaseDiameter = *input.CaseDiameter
	}
	if input.WaterResistance != nil {
		product.WaterResistance = *input.WaterResistance
	}
	if input.StrapMaterial != nil {
		product.StrapMaterial = *input.StrapMaterial
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
	if input.IsOnSale != nil {
		product.IsOnSale = *input.IsOnSale
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	s.metrics.IncProductUpdated()

	// Invalidate cache
	if err := s.cache.DeleteProduct(ctx, product.ID); err != nil {
		// Log but don't fail - eventual consistency is acceptable
		_ = err
	}

	return product, nil
}

// DeleteProduct soft-deletes a product (admin only).
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	s.metrics.IncProductDeleted()

	if err := s.cache.DeleteProduct(ctx, id); err != nil {
		_ = err // Log but don't fail
	}

	return nil
}

// CreateCategoryInput defines input for creating a category.
type CreateCategoryInput struct {
	Name        string
	Description string
	ImageURL    string
}

// CreateCategory creates a new category (admin only).
func (s *CatalogService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidCategory
	}

	category := &model.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	if category.ImageURL == "" {
		category.ImageURL = assets.CategoryBanner(name).Primary
	}

	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryExists) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// UpdateCategoryInput defines input for updating a category.
type UpdateCategoryInput struct {
	ID          string
	Name        *string
	Description *string
	ImageURL    *string
	IsActive    *bool
}

// UpdateCategory updates a category's mutable fields (admin only).
func (s *CatalogService) UpdateCategory(ctx context.Context, input UpdateCategoryInput) (*model.Category, error) {
	category, err := s.repo.GetCategoryByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrInvalidCategory
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.ImageURL != nil {
		category.ImageURL = *input.ImageURL
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryExists) {
			return nil, ErrCategoryExists
		}
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	return category, nil
}

// validateVisibleProduct hides deleted and inactive products from
// non-admin reads and evicts stale cache entries for them.
func (s *CatalogService) validateVisibleProduct(ctx context.Context, product *model.Product, id string) (*model.Product, error) {
	if product.DeletedAt != nil {
		_ = s.cache.DeleteProduct(ctx, id)
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}
