package repository

import (
	"context"
	"fmt"
)

// migrations contains the schema DDL in apply order. Every statement is
// idempotent so Migrate can run at every startup.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username VARCHAR(50) NOT NULL UNIQUE,
		email VARCHAR(100) NOT NULL UNIQUE,
		full_name VARCHAR(100),
		hashed_password VARCHAR(255) NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		description TEXT,
		image_url VARCHAR(500),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		model_number VARCHAR(100) NOT NULL UNIQUE,
		description TEXT,
		price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		original_price DOUBLE PRECISION,
		stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		category_id TEXT REFERENCES categories(id),
		movement_type VARCHAR(50),
		case_material VARCHAR(50),
		case_diameter VARCHAR(20),
		water_resistance VARCHAR(50),
		strap_material VARCHAR(50),
		main_image_url VARCHAR(500),
		detail_image_url VARCHAR(500),
		lifestyle_image_url VARCHAR(500),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_featured BOOLEAN NOT NULL DEFAULT FALSE,
		is_on_sale BOOLEAN NOT NULL DEFAULT FALSE,
		deleted_at TIMESTAMPTZ,
		view_count BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category_id) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_products_name ON products (name)`,
	`CREATE INDEX IF NOT EXISTS idx_products_listing ON products (created_at DESC, id DESC) WHERE deleted_at IS NULL`,

	`CREATE TABLE IF NOT EXISTS cart_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL DEFAULT 1 CHECK (quantity > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, product_id)
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		order_number VARCHAR(50) NOT NULL UNIQUE,
		user_id TEXT NOT NULL REFERENCES users(id),
		total_amount DOUBLE PRECISION NOT NULL CHECK (total_amount >= 0),
		status VARCHAR(50) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'confirmed', 'shipped', 'delivered', 'cancelled')),
		shipping_name VARCHAR(100) NOT NULL,
		shipping_email VARCHAR(100) NOT NULL,
		shipping_phone VARCHAR(20),
		shipping_address TEXT NOT NULL,
		shipping_city VARCHAR(100) NOT NULL,
		shipping_state VARCHAR(100),
		shipping_postal_code VARCHAR(20) NOT NULL,
		shipping_country VARCHAR(100) NOT NULL,
		payment_method VARCHAR(50),
		payment_status VARCHAR(50) NOT NULL DEFAULT 'pending'
			CHECK (payment_status IN ('pending', 'paid', 'failed', 'refunded')),
		payment_id VARCHAR(200),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id),
		product_id TEXT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price DOUBLE PRECISION NOT NULL,
		total_price DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,

	`CREATE TABLE IF NOT EXISTS view_events (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL UNIQUE,
		product_id TEXT NOT NULL,
		referrer VARCHAR(500),
		user_agent VARCHAR(500),
		visitor_hash VARCHAR(32) NOT NULL,
		viewed_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_view_events_product ON view_events (product_id, viewed_at)`,

	`CREATE TABLE IF NOT EXISTS daily_product_stats (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		date DATE NOT NULL,
		total_views BIGINT NOT NULL DEFAULT 0,
		unique_visitors BIGINT NOT NULL DEFAULT 0,
		units_sold BIGINT NOT NULL DEFAULT 0,
		referrer_breakdown JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (product_id, date)
	)`,

	`CREATE TABLE IF NOT EXISTS webhook_endpoints (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		target_url VARCHAR(1024) NOT NULL,
		secret_hash VARCHAR(255) NOT NULL,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		event_types TEXT[] NOT NULL,
		name VARCHAR(100),
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS webhook_deliveries (
		id TEXT PRIMARY KEY,
		endpoint_id TEXT NOT NULL REFERENCES webhook_endpoints(id),
		event_id TEXT NOT NULL,
		event_type VARCHAR(50) NOT NULL,
		payload_json TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'success', 'failed', 'exhausted')),
		attempt_count INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		next_retry_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_attempt_at TIMESTAMPTZ,
		last_http_status INTEGER,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_webhook_deliveries_due
		ON webhook_deliveries (next_retry_at) WHERE status IN ('pending', 'failed')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_webhook_deliveries_event_endpoint
		ON webhook_deliveries (event_id, endpoint_id)`,
}

// Migrate applies the embedded schema. Safe to run on every startup.
func (r *Repository) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i, err)
		}
	}
	return nil
}
