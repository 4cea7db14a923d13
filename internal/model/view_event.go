// Package model defines domain entities for the application.
package model

import "time"

// ViewEvent represents a single product detail view.
type ViewEvent struct {
	ID      string `json:"id"`       // ULID (time-sortable)
	EventID string `json:"event_id"` // Idempotency key (Redis stream ID)

	// Product reference
	ProductID  string `json:"product_id"`
	CategoryID string `json:"category_id,omitempty"` // Not persisted, for breakdowns

	// Request metadata
	Referrer  string `json:"referrer,omitempty"`   // Referer header (truncated 500 chars)
	UserAgent string `json:"user_agent,omitempty"` // UA string (truncated 500 chars)

	// Privacy-safe visitor identification
	VisitorHash string `json:"visitor_hash"` // SHA256(IP + UA + daily_salt)[0:16]

	// Timestamps
	ViewedAt  time.Time `json:"viewed_at"`  // Event timestamp
	CreatedAt time.Time `json:"created_at"` // DB insertion time
}

// DailyProductStats represents pre-aggregated daily statistics for a product.
type DailyProductStats struct {
	ID        string    `json:"id"`         // Composite: product_id:date
	ProductID string    `json:"product_id"` // FK to products.id
	Date      time.Time `json:"date"`       // UTC date (time component zeroed)

	// Counters
	TotalViews     int64 `json:"total_views"`
	UniqueVisitors int64 `json:"unique_visitors"`
	UnitsSold      int64 `json:"units_sold"`

	// Breakdowns (stored as JSONB in Postgres)
	ReferrerBreakdown map[string]int64 `json:"referrer_breakdown,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
