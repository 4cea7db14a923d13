package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/chronoshop/chronoshop/internal/model"
)

// Common errors for product repository operations.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrModelNumberExists = errors.New("model number already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductFilter defines filters for listing products.
type ProductFilter struct {
	CategoryID   string
	FeaturedOnly bool
	OnSaleOnly   bool
	InStockOnly  bool
	Search       string
	MinPrice     *float64
	MaxPrice     *float64
}

const productColumns = `id, name, model_number, description, price, original_price, stock_quantity, category_id,
		movement_type, case_material, case_diameter, water_resistance, strap_material,
		main_image_url, detail_image_url, lifestyle_image_url,
		is_active, is_featured, is_on_sale, deleted_at, view_count, created_at, updated_at`

// CreateProduct inserts a new product into the database.
func (r *Repository) CreateProduct(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, model_number, description, price, original_price, stock_quantity, category_id,
			movement_type, case_material, case_diameter, water_resistance, strap_material,
			main_image_url, detail_image_url, lifestyle_image_url,
			is_active, is_featured, is_on_sale, view_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.ModelNumber, p.Description, p.Price, nullableFloat(p.OriginalPrice),
		p.StockQuantity, p.CategoryID,
		p.MovementType, p.CaseMaterial, p.CaseDiameter, p.WaterResistance, p.StrapMaterial,
		p.MainImageURL, p.DetailImageURL, p.LifestyleImageURL,
		p.IsActive, p.IsFeatured, p.IsOnSale, p.ViewCount, p.CreatedAt, p.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrModelNumberExists
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetProductByID retrieves a product by its ID.
// This is the hot path for product detail reads when the cache misses.
func (r *Repository) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted_at IS NULL`

	p, err := r.scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}

	return p, nil
}

// GetProductByModelNumber retrieves a product by its model number.
func (r *Repository) GetProductByModelNumber(ctx context.Context, modelNumber string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE model_number = $1 AND deleted_at IS NULL`

	p, err := r.scanProduct(r.pool.QueryRow(ctx, query, modelNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by model number: %w", err)
	}

	return p, nil
}

// ListProducts retrieves a paginated list of products using keyset pagination.
func (r *Repository) ListProducts(ctx context.Context, filter ProductFilter, cursor string, limit int) ([]*model.Product, string, error) {
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE deleted_at IS NULL AND is_active = TRUE`
	var args []any
	argIndex := 1

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	if filter.CategoryID != "" {
		query += fmt.Sprintf(" AND category_id = $%d", argIndex)
		args = append(args, filter.CategoryID)
		argIndex++
	}

	if filter.FeaturedOnly {
		query += " AND is_featured = TRUE"
	}

	if filter.OnSaleOnly {
		query += " AND is_on_sale = TRUE"
	}

	if filter.InStockOnly {
		query += " AND stock_quantity > 0"
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR model_number ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex, argIndex)
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.MinPrice != nil {
		query += fmt.Sprintf(" AND price >= $%d", argIndex)
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		query += fmt.Sprintf(" AND price <= $%d", argIndex)
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1) // Fetch one extra to determine hasMore

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating products: %w", err)
	}

	var nextCursor string
	if len(products) > limit {
		products = products[:limit]
		last := products[len(products)-1]
		nextCursor = encodeCursor(&PaginationCursor{
			ID:        last.ID,
			CreatedAt: last.CreatedAt,
		})
	}

	return products, nextCursor, nil
}

// UpdateProduct updates a product's mutable fields.
func (r *Repository) UpdateProduct(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, original_price = $5, stock_quantity = $6,
			category_id = $7, movement_type = $8, case_material = $9, case_diameter = $10,
			water_resistance = $11, strap_material = $12,
			main_image_url = $13, detail_image_url = $14, lifestyle_image_url = $15,
			is_active = $16, is_featured = $17, is_on_sale = $18, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, nullableFloat(p.OriginalPrice), p.StockQuantity,
		p.CategoryID, p.MovementType, p.CaseMaterial, p.CaseDiameter,
		p.WaterResistance, p.StrapMaterial,
		p.MainImageURL, p.DetailImageURL, p.LifestyleImageURL,
		p.IsActive, p.IsFeatured, p.IsOnSale,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// DeleteProduct performs a soft delete on a product.
func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	query := `
		UPDATE products
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

// IncrementViewCount increments the view counter for a product.
// Called from the analytics worker in batches, not the read path.
func (r *Repository) IncrementViewCount(ctx context.Context, id string, count int64) error {
	query := `
		UPDATE products
		SET view_count = view_count + $2
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, count)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}

	return nil
}

// CountProducts returns the number of non-deleted products.
func (r *Repository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (r *Repository) scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	var originalPrice *float64
	err := row.Scan(
		&p.ID, &p.Name, &p.ModelNumber, &p.Description, &p.Price, &originalPrice,
		&p.StockQuantity, &p.CategoryID,
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
	return &p, nil
}

// nullableFloat maps a zero value to NULL so "no original price" is not
// stored as 0.
func nullableFloat(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}
