package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PromRecorder exposes metrics to Prometheus.
type PromRecorder struct {
	registry *prometheus.Registry

	productCacheHits   prometheus.Counter
	productCacheMisses prometheus.Counter
	productReadSeconds prometheus.Histogram
	productsCreated    prometheus.Counter
	productsUpdated    prometheus.Counter
	productsDeleted    prometheus.Counter
	usersRegistered    prometheus.Counter
	loginAttempts      *prometheus.CounterVec
	ordersPlaced       prometheus.Counter
	ordersCancelled    prometheus.Counter
	checkoutSeconds    prometheus.Histogram

	analyticsPublished    *prometheus.CounterVec
	analyticsProcessed    *prometheus.CounterVec
	analyticsBatchSize    prometheus.Histogram
	analyticsBatchSeconds prometheus.Histogram
	analyticsQueueDepth   prometheus.Gauge
	analyticsIngestLag    prometheus.Histogram

	webhookDeliveries     *prometheus.CounterVec
	webhookDeliverSeconds prometheus.Histogram
	webhookQueueDepth     prometheus.Gauge
}

// NewPrometheus returns a Recorder backed by a dedicated registry.
func NewPrometheus() *PromRecorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PromRecorder{
		registry: reg,

		productCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronoshop_product_cache_hits_total",
			Help: "Product reads served from cache.",
		}),
		productCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronoshop_product_cache_misses_total",
			Help: "Product reads that fell through to the database.",
		}),
		productReadSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chronoshop_product_read_duration_seconds",
			Help:    "Product detail read latency.",
			Buckets: prometheus.DefBuckets,
		}),
		productsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronoshop_products_created_total",
			Help: "Products created via the admin API.",
		}),
		productsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronoshop_products_updated_total",
			Help: "Products updated via the admin API.",
		}),
		productsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronoshop_products_deleted_total",
			Help: "Products soft-deleted via the admin API.",
		}),
		usersRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronoshop_users_registered_total",
			Help: "Accounts created.",
		}),
		loginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chronoshop_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"status"}),
		ordersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronoshop_orders_placed_total",
			Help: "Orders placed at checkout.",
		}),
		ordersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "chronoshop_orders_cancelled_total",
			Help: "Orders cancelled.",
		}),
		checkoutSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chronoshop_checkout_duration_seconds",
			Help:    "Checkout transaction latency.",
			Buckets: prometheus.DefBuckets,
		}),

		analyticsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chronoshop_analytics_events_published_total",
			Help: "View events published to the stream, by outcome.",
		}, []string{"status"}),
		analyticsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chronoshop_analytics_events_processed_total",
			Help: "View events processed by the worker, by outcome.",
		}, []string{"status"}),
		analyticsBatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chronoshop_analytics_batch_size",
			Help:    "View event batch sizes.",
			Buckets: []float64{1, 10, 50, 100, 250, 500},
		}),
		analyticsBatchSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chronoshop_analytics_batch_duration_seconds",
			Help:    "View event batch processing latency.",
			Buckets: prometheus.DefBuckets,
		}),
		analyticsQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chronoshop_analytics_queue_depth",
			Help: "Pending entries in the view event stream.",
		}),
		analyticsIngestLag: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chronoshop_analytics_ingest_lag_seconds",
			Help:    "Age of events when persisted.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),

		webhookDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chronoshop_webhook_deliveries_total",
			Help: "Webhook delivery attempts, by outcome.",
		}, []string{"status"}),
		webhookDeliverSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chronoshop_webhook_delivery_duration_seconds",
			Help:    "Webhook HTTP delivery latency.",
			Buckets: prometheus.DefBuckets,
		}),
		webhookQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chronoshop_webhook_queue_depth",
			Help: "Pending and retryable webhook deliveries.",
		}),
	}
}

// Handler returns the Prometheus exposition handler for this registry.
func (p *PromRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PromRecorder) IncProductCacheHit()  { p.productCacheHits.Inc() }
func (p *PromRecorder) IncProductCacheMiss() { p.productCacheMisses.Inc() }

func (p *PromRecorder) ObserveProductReadDuration(duration time.Duration) {
	p.productReadSeconds.Observe(duration.Seconds())
}

func (p *PromRecorder) IncProductCreated() { p.productsCreated.Inc() }
func (p *PromRecorder) IncProductUpdated() { p.productsUpdated.Inc() }
func (p *PromRecorder) IncProductDeleted() { p.productsDeleted.Inc() }

func (p *PromRecorder) IncUserRegistered() { p.usersRegistered.Inc() }

func (p *PromRecorder) IncLoginAttempt(status string) {
	p.loginAttempts.WithLabelValues(status).Inc()
}

func (p *PromRecorder) IncOrderPlaced()    { p.ordersPlaced.Inc() }
func (p *PromRecorder) IncOrderCancelled() { p.ordersCancelled.Inc() }

func (p *PromRecorder) ObserveCheckoutDuration(duration time.Duration) {
	p.checkoutSeconds.Observe(duration.Seconds())
}

func (p *PromRecorder) IncAnalyticsEventPublished(status string) {
	p.analyticsPublished.WithLabelValues(status).Inc()
}

func (p *PromRecorder) IncAnalyticsEventProcessed(status string) {
	p.analyticsProcessed.WithLabelValues(status).Inc()
}

func (p *PromRecorder) ObserveAnalyticsBatchSize(size int) {
	p.analyticsBatchSize.Observe(float64(size))
}

func (p *PromRecorder) ObserveAnalyticsBatchDuration(duration time.Duration) {
	p.analyticsBatchSeconds.Observe(duration.Seconds())
}

func (p *PromRecorder) SetAnalyticsQueueDepth(depth int64) {
	p.analyticsQueueDepth.Set(float64(depth))
}

func (p *PromRecorder) ObserveAnalyticsIngestLag(lag time.Duration) {
	p.analyticsIngestLag.Observe(lag.Seconds())
}

func (p *PromRecorder) IncWebhookDelivery(status string) {
	p.webhookDeliveries.WithLabelValues(status).Inc()
}

func (p *PromRecorder) ObserveWebhookDeliveryDuration(duration time.Duration) {
	p.webhookDeliverSeconds.Observe(duration.Seconds())
}

func (p *PromRecorder) SetWebhookQueueDepth(depth int64) {
	p.webhookQueueDepth.Set(float64(depth))
}
