package service

import (
	"context"
	"errors"
	"time"

	"github.com/chronoshop/chronoshop/internal/model"
	"github.com/chronoshop/chronoshop/internal/repository"
)

// ErrInvalidDateRange indicates from is after to or the range is too wide.
var ErrInvalidDateRange = errors.New("invalid date range")

// maxStatsRangeDays bounds analytics queries to keep them cheap.
const maxStatsRangeDays = 366

// StatsService answers product analytics queries for the admin API.
type StatsService struct {
	events *repository.ViewEventRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(events *repository.ViewEventRepository) *StatsService {
	return &StatsService{events: events}
}

// normalizeRange applies defaults and bounds to a stats date range.
// A zero to defaults to today; a zero from defaults to 30 days before to.
func normalizeRange(from, to time.Time) (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	if to.Sub(from) > maxStatsRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return from, to, nil
}

// DailyStats returns per-day view stats for a product.
func (s *StatsService) DailyStats(ctx context.Context, productID string, from, to time.Time) ([]*model.DailyProductStats, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.events.GetDailyStats(ctx, productID, from, to)
}

// Summary returns aggregate view and sales stats for a product.
func (s *StatsService) Summary(ctx context.Context, productID string, from, to time.Time) (*repository.ProductStatsSummary, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.events.GetStatsSummary(ctx, productID, from, to)
}

// TopProducts returns the most viewed products in the range.
func (s *StatsService) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.TopProduct, error) {
	from, to, err := normalizeRange(from, to)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.events.GetTopProducts(ctx, from, to, limit)
}
