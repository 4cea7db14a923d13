package handler

import (
	"fmt"
	"net/http"

	"github.com/chronoshop/chronoshop/internal/metrics"
)

// MetricsHandler exposes metrics in Prometheus exposition format.
// When a Prometheus recorder is configured its registry handler serves
// the endpoint; otherwise the in-memory snapshot is rendered by hand.
type MetricsHandler struct {
	prom        http.Handler
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
// Either argument may be nil.
func NewMetricsHandler(prom http.Handler, snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{
		prom:        prom,
		snapshotter: snapshotter,
	}
}

// Metrics handles GET /metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.prom != nil {
		h.prom.ServeHTTP(w, r)
		return
	}

	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "chronoshop_product_cache_hits_total %d\n", snap.ProductCacheHits)
	writeMetric(w, "chronoshop_product_cache_misses_total %d\n", snap.ProductCacheMisses)
	writeMetric(w, "chronoshop_product_read_duration_seconds_count %d\n", snap.ProductReadCount)
	writeMetric(w, "chronoshop_product_read_duration_seconds_sum %.6f\n", float64(snap.ProductReadTotalNs)/1e9)

	writeMetric(w, "chronoshop_products_created_total %d\n", snap.ProductsCreated)
	writeMetric(w, "chronoshop_products_updated_total %d\n", snap.ProductsUpdated)
	writeMetric(w, "chronoshop_products_deleted_total %d\n", snap.ProductsDeleted)

	writeMetric(w, "chronoshop_users_registered_total %d\n", snap.UsersRegistered)
	for status, count := range snap.LoginAttempts {
		writeMetric(w, "chronoshop_login_attempts_total{status=%q} %d\n", status, count)
	}

	writeMetric(w, "chronoshop_orders_placed_total %d\n", snap.OrdersPlaced)
	writeMetric(w, "chronoshop_orders_cancelled_total %d\n", snap.OrdersCancelled)
	writeMetric(w, "chronoshop_checkout_duration_seconds_count %d\n", snap.CheckoutCount)
	writeMetric(w, "chronoshop_checkout_duration_seconds_sum %.6f\n", float64(snap.CheckoutTotalNs)/1e9)

	for status, count := range snap.AnalyticsPublished {
		writeMetric(w, "chronoshop_analytics_events_published_total{status=%q} %d\n", status, count)
	}
	for status, count := range snap.AnalyticsProcessed {
		writeMetric(w, "chronoshop_analytics_events_processed_total{status=%q} %d\n", status, count)
	}

	writeMetric(w, "chronoshop_analytics_batches_total %d\n", snap.AnalyticsBatchCount)
	writeMetric(w, "chronoshop_analytics_events_batched_total %d\n", snap.AnalyticsBatchTotal)
	writeMetric(w, "chronoshop_analytics_queue_depth %d\n", snap.AnalyticsQueueDepth)
	writeMetric(w, "chronoshop_analytics_last_ingest_lag_seconds %.6f\n", snap.AnalyticsLastIngestLag.Seconds())

	for status, count := range snap.WebhookDeliveries {
		writeMetric(w, "chronoshop_webhook_deliveries_total{status=%q} %d\n", status, count)
	}
	writeMetric(w, "chronoshop_webhook_delivery_duration_seconds_count %d\n", snap.WebhookDeliveryCount)
	writeMetric(w, "chronoshop_webhook_delivery_duration_seconds_sum %.6f\n", float64(snap.WebhookDeliveryTotalNs)/1e9)
	writeMetric(w, "chronoshop_webhook_queue_depth %d\n", snap.WebhookQueueDepth)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
