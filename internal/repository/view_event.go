package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/chronoshop/chronoshop/internal/model"
)

// ViewEventRepository provides database access for product view events.
type ViewEventRepository struct {
	repo *Repository
}

// NewViewEventRepository creates a new ViewEventRepository.
func NewViewEventRepository(repo *Repository) *ViewEventRepository {
	return &ViewEventRepository{repo: repo}
}

// BulkInsert inserts multiple view events with idempotency via ON CONFLICT DO NOTHING.
func (r *ViewEventRepository) BulkInsert(ctx context.Context, events []*model.ViewEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO view_events (
			id, event_id, product_id, referrer, user_agent, visitor_hash, viewed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			event.ProductID,
			nullableString(event.Referrer),
			nullableString(event.UserAgent),
			event.VisitorHash,
			event.ViewedAt,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert event %d: %w", i, err)
		}
	}

	return nil
}

// UpdateDailyStats recalculates and upserts the daily_product_stats rows
// touched by a batch of events. Units sold are written by the checkout
// path and are left untouched here.
func (r *ViewEventRepository) UpdateDailyStats(ctx context.Context, events []*model.ViewEvent) error {
	if len(events) == 0 {
		return nil
	}

	keys := uniqueDailyKeys(events)
	for _, key := range keys {
		acc, err := r.recalculateDailyStat(ctx, key.productID, key.date)
		if err != nil {
			return fmt.Errorf("recalculate daily stat %s:%s: %w", key.productID, key.date.Format("2006-01-02"), err)
		}
		if err := r.upsertDailyStat(ctx, acc); err != nil {
			return fmt.Errorf("upsert daily stat %s:%s: %w", key.productID, key.date.Format("2006-01-02"), err)
		}
	}

	return nil
}

// dailyStatsAccumulator accumulates view stats for one product/date.
type dailyStatsAccumulator struct {
	productID      string
	date           time.Time
	totalViews     int64
	uniqueVisitors int64
	referrers      map[string]int64
	visitorSeen    map[string]bool
}

type dailyStatsKey struct {
	productID string
	date      time.Time
}

func uniqueDailyKeys(events []*model.ViewEvent) []dailyStatsKey {
	seen := make(map[string]dailyStatsKey)
	for _, event := range events {
		day := event.ViewedAt.UTC().Truncate(24 * time.Hour)
		key := fmt.Sprintf("%s:%s", event.ProductID, day.Format("2006-01-02"))
		seen[key] = dailyStatsKey{productID: event.ProductID, date: day}
	}

	keys := make([]dailyStatsKey, 0, len(seen))
	for _, key := range seen {
		keys = append(keys, key)
	}
	return keys
}

func (r *ViewEventRepository) recalculateDailyStat(ctx context.Context, productID string, date time.Time) (*dailyStatsAccumulator, error) {
	start := date.UTC().Truncate(24 * time.Hour)
	end := start.Add(24 * time.Hour)

	query := `
		SELECT COALESCE(referrer, ''), visitor_hash
		FROM view_events
		WHERE product_id = $1 AND viewed_at >= $2 AND viewed_at < $3
	`

	rows, err := r.repo.pool.Query(ctx, query, productID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query view events: %w", err)
	}
	defer rows.Close()

	events := make([]*model.ViewEvent, 0)
	for rows.Next() {
		var referrer, visitorHash string
		if err := rows.Scan(&referrer, &visitorHash); err != nil {
			return nil, fmt.Errorf("scan view event: %w", err)
		}
		events = append(events, &model.ViewEvent{
			Referrer:    referrer,
			VisitorHash: visitorHash,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate view events: %w", err)
	}

	acc := accumulateDailyStats(events)
	acc.productID = productID
	acc.date = start
	return acc, nil
}

func accumulateDailyStats(events []*model.ViewEvent) *dailyStatsAccumulator {
	acc := &dailyStatsAccumulator{
		referrers:   make(map[string]int64),
		visitorSeen: make(map[string]bool),
	}

	for _, event := range events {
		acc.totalViews++

		if event.VisitorHash != "" && !acc.visitorSeen[event.VisitorHash] {
			acc.visitorSeen[event.VisitorHash] = true
			acc.uniqueVisitors++
		}

		if event.Referrer != "" {
			acc.referrers[extractDomain(event.Referrer)]++
		} else {
			acc.referrers["(direct)"]++
		}
	}

	return acc
}

// upsertDailyStat inserts or updates a daily_product_stats row.
func (r *ViewEventRepository) upsertDailyStat(ctx context.Context, acc *dailyStatsAccumulator) error {
	referrerJSON, _ := json.Marshal(acc.referrers)
	id := fmt.Sprintf("%s:%s", acc.productID, acc.date.Format("2006-01-02"))

	query := `
		INSERT INTO daily_product_stats (
			id, product_id, date, total_views, unique_visitors, referrer_breakdown, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (product_id, date) DO UPDATE SET
			total_views = EXCLUDED.total_views,
			unique_visitors = EXCLUDED.unique_visitors,
			referrer_breakdown = EXCLUDED.referrer_breakdown,
			updated_at = NOW()
	`

	_, err := r.repo.pool.Exec(ctx, query,
		id,
		acc.productID,
		acc.date,
		acc.totalViews,
		acc.uniqueVisitors,
		referrerJSON,
	)

	return err
}

// GetDailyStats retrieves daily stats for a product within a date range.
func (r *ViewEventRepository) GetDailyStats(ctx context.Context, productID string, from, to time.Time) ([]*model.DailyProductStats, error) {
	query := `
		SELECT id, product_id, date, total_views, unique_visitors, units_sold,
			   referrer_breakdown, created_at, updated_at
		FROM daily_product_stats
		WHERE product_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC
	`

	rows, err := r.repo.pool.Query(ctx, query, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []*model.DailyProductStats
	for rows.Next() {
		stat, err := r.scanDailyStat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}

// ProductStatsSummary aggregates a product's analytics over a range.
type ProductStatsSummary struct {
	TotalViews     int64   `json:"total_views"`
	UniqueVisitors int64   `json:"unique_visitors"`
	UnitsSold      int64   `json:"units_sold"`
	AvgViewsPerDay float64 `json:"avg_views_per_day"`
}

// GetStatsSummary retrieves aggregated analytics for a product.
func (r *ViewEventRepository) GetStatsSummary(ctx context.Context, productID string, from, to time.Time) (*ProductStatsSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(total_views), 0),
			COALESCE(SUM(unique_visitors), 0),
			COALESCE(SUM(units_sold), 0),
			COUNT(*)
		FROM daily_product_stats
		WHERE product_id = $1 AND date >= $2 AND date <= $3
	`

	var summary ProductStatsSummary
	var days int

	err := r.repo.pool.QueryRow(ctx, query, productID, from, to).Scan(
		&summary.TotalViews, &summary.UniqueVisitors, &summary.UnitsSold, &days,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats summary: %w", err)
	}

	if days > 0 {
		summary.AvgViewsPerDay = float64(summary.TotalViews) / float64(days)
	}

	return &summary, nil
}

// TopProduct is one row of the most-viewed report.
type TopProduct struct {
	ProductID string `json:"product_id"`
	Views     int64  `json:"views"`
	UnitsSold int64  `json:"units_sold"`
}

// GetTopProducts returns the most viewed products over a date range.
func (r *ViewEventRepository) GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProduct, error) {
	query := `
		SELECT product_id, SUM(total_views) AS views, SUM(units_sold) AS sold
		FROM daily_product_stats
		WHERE date >= $1 AND date <= $2
		GROUP BY product_id
		ORDER BY views DESC
		LIMIT $3
	`

	rows, err := r.repo.pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query top products: %w", err)
	}
	defer rows.Close()

	var top []TopProduct
	for rows.Next() {
		var t TopProduct
		if err := rows.Scan(&t.ProductID, &t.Views, &t.UnitsSold); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		top = append(top, t)
	}

	return top, rows.Err()
}

func (r *ViewEventRepository) scanDailyStat(rows pgx.Rows) (*model.DailyProductStats, error) {
	var stat model.DailyProductStats
	var referrerJSON []byte

	err := rows.Scan(
		&stat.ID,
		&stat.ProductID,
		&stat.Date,
		&stat.TotalViews,
		&stat.UniqueVisitors,
		&stat.UnitsSold,
		&referrerJSON,
		&stat.CreatedAt,
		&stat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(referrerJSON) > 0 {
		_ = json.Unmarshal(referrerJSON, &stat.ReferrerBreakdown)
	}

	return &stat, nil
}

// nullableString returns nil for empty strings.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// extractDomain extracts the host part of a referrer URL.
func extractDomain(urlStr string) string {
	if len(urlStr) < 10 {
		return "(unknown)"
	}
	start := 0
	for i := 0; i < len(urlStr)-2; i++ {
		if urlStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	end := len(urlStr)
	for i := start; i < len(urlStr); i++ {
		if urlStr[i] == '/' {
			end = i
			break
		}
	}
	if start >= end {
		return "(unknown)"
	}
	return urlStr[start:end]
}
