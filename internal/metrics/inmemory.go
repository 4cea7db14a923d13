package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ProductCacheHits       uint64
	ProductCacheMisses     uint64
	ProductReadCount       uint64
	ProductReadTotalNs     int64
	ProductsCreated        uint64
	ProductsUpdated        uint64
	ProductsDeleted        uint64
	UsersRegistered        uint64
	LoginAttempts          map[string]uint64
	OrdersPlaced           uint64
	OrdersCancelled        uint64
	CheckoutCount          uint64
	CheckoutTotalNs        int64
	AnalyticsPublished     map[string]uint64
	AnalyticsProcessed     map[string]uint64
	AnalyticsBatchCount    uint64
	AnalyticsBatchTotal    uint64
	AnalyticsQueueDepth    int64
	AnalyticsLastIngestLag time.Duration
	WebhookDeliveries      map[string]uint64
	WebhookDeliveryCount   uint64
	WebhookDeliveryTotalNs int64
	WebhookQueueDepth      int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	productCacheHits   uint64
	productCacheMisses uint64
	productReadCount   uint64
	productReadTotalNs int64
	productsCreated    uint64
	productsUpdated    uint64
	productsDeleted    uint64
	usersRegistered    uint64
	ordersPlaced       uint64
	ordersCancelled    uint64
	checkoutCount      uint64
	checkoutTotalNs    int64
	webhookDelivCount  uint64
	webhookDelivNs     int64

	mu                  sync.Mutex
	loginAttempts       map[string]uint64
	analyticsPublished  map[string]uint64
	analyticsProcessed  map[string]uint64
	analyticsBatchCount uint64
	analyticsBatchTotal uint64
	analyticsQueueDepth int64
	analyticsIngestLag  time.Duration
	webhookDeliveries   map[string]uint64
	webhookQueueDepth   int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		loginAttempts:      make(map[string]uint64),
		analyticsPublished: make(map[string]uint64),
		analyticsProcessed: make(map[string]uint64),
		webhookDeliveries:  make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	logins := make(map[string]uint64, len(m.loginAttempts))
	for k, v := range m.loginAttempts {
		logins[k] = v
	}
	published := make(map[string]uint64, len(m.analyticsPublished))
	for k, v := range m.analyticsPublished {
		published[k] = v
	}
	processed := make(map[string]uint64, len(m.analyticsProcessed))
	for k, v := range m.analyticsProcessed {
		processed[k] = v
	}
	webhooks := make(map[string]uint64, len(m.webhookDeliveries))
	for k, v := range m.webhookDeliveries {
		webhooks[k] = v
	}

	return Snapshot{
		ProductCacheHits:       atomic.LoadUint64(&m.productCacheHits),
		ProductCacheMisses:     atomic.LoadUint64(&m.productCacheMisses),
		ProductReadCount:       atomic.LoadUint64(&m.productReadCount),
		ProductReadTotalNs:     atomic.LoadInt64(&m.productReadTotalNs),
		ProductsCreated:        atomic.LoadUint64(&m.productsCreated),
		ProductsUpdated:        atomic.LoadUint64(&m.productsUpdated),
		ProductsDeleted:        atomic.LoadUint64(&m.productsDeleted),
		UsersRegistered:        atomic.LoadUint64(&m.usersRegistered),
		LoginAttempts:          logins,
		OrdersPlaced:           atomic.LoadUint64(&m.ordersPlaced),
		OrdersCancelled:        atomic.LoadUint64(&m.ordersCancelled),
		CheckoutCount:          atomic.LoadUint64(&m.checkoutCount),
		CheckoutTotalNs:        atomic.LoadInt64(&m.checkoutTotalNs),
		AnalyticsPublished:     published,
		AnalyticsProcessed:     processed,
		AnalyticsBatchCount:    m.analyticsBatchCount,
		AnalyticsBatchTotal:    m.analyticsBatchTotal,
		AnalyticsQueueDepth:    m.analyticsQueueDepth,
		AnalyticsLastIngestLag: m.analyticsIngestLag,
		WebhookDeliveries:      webhooks,
		WebhookDeliveryCount:   atomic.LoadUint64(&m.webhookDelivCount),
		WebhookDeliveryTotalNs: atomic.LoadInt64(&m.webhookDelivNs),
		WebhookQueueDepth:      m.webhookQueueDepth,
	}
}

// IncProductCacheHit increments the cache hit counter.
func (m *InMemoryRecorder) IncProductCacheHit() {
	atomic.AddUint64(&m.productCacheHits, 1)
}

// IncProductCacheMiss increments the cache miss counter.
func (m *InMemoryRecorder) IncProductCacheMiss() {
	atomic.AddUint64(&m.productCacheMisses, 1)
}

// ObserveProductReadDuration records product read duration.
func (m *InMemoryRecorder) ObserveProductReadDuration(duration time.Duration) {
	atomic.AddUint64(&m.productReadCount, 1)
	atomic.AddInt64(&m.productReadTotalNs, duration.Nanoseconds())
}

// IncProductCreated increments the product created counter.
func (m *InMemoryRecorder) IncProductCreated() {
	atomic.AddUint64(&m.productsCreated, 1)
}

// IncProductUpdated increments the product updated counter.
func (m *InMemoryRecorder) IncProductUpdated() {
	atomic.AddUint64(&m.productsUpdated, 1)
}

// IncProductDeleted increments the product deleted counter.
func (m *InMemoryRecorder) IncProductDeleted() {
	atomic.AddUint64(&m.productsDeleted, 1)
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLoginAttempt increments the login counter for a status.
func (m *InMemoryRecorder) IncLoginAttempt(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loginAttempts[status]++
}

// IncOrderPlaced increments the order placed counter.
func (m *InMemoryRecorder) IncOrderPlaced() {
	atomic.AddUint64(&m.ordersPlaced, 1)
}

// IncOrderCancelled increments the order cancelled counter.
func (m *InMemoryRecorder) IncOrderCancelled() {
	atomic.AddUint64(&m.ordersCancelled, 1)
}

// ObserveCheckoutDuration records checkout duration.
func (m *InMemoryRecorder) ObserveCheckoutDuration(duration time.Duration) {
	atomic.AddUint64(&m.checkoutCount, 1)
	atomic.AddInt64(&m.checkoutTotalNs, duration.Nanoseconds())
}

// IncAnalyticsEventPublished increments the published counter for a status.
func (m *InMemoryRecorder) IncAnalyticsEventPublished(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyticsPublished[status]++
}

// IncAnalyticsEventProcessed increments the processed counter for a status.
func (m *InMemoryRecorder) IncAnalyticsEventProcessed(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyticsProcessed[status]++
}

// ObserveAnalyticsBatchSize records a processed batch size.
func (m *InMemoryRecorder) ObserveAnalyticsBatchSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyticsBatchCount++
	m.analyticsBatchTotal += uint64(size)
}

// ObserveAnalyticsBatchDuration is recorded only by the Prometheus recorder.
func (m *InMemoryRecorder) ObserveAnalyticsBatchDuration(duration time.Duration) {}

// SetAnalyticsQueueDepth records the current stream depth.
func (m *InMemoryRecorder) SetAnalyticsQueueDepth(depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyticsQueueDepth = depth
}

// ObserveAnalyticsIngestLag records the most recent ingest lag.
func (m *InMemoryRecorder) ObserveAnalyticsIngestLag(lag time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyticsIngestLag = lag
}

// IncWebhookDelivery increments the delivery counter for a status.
func (m *InMemoryRecorder) IncWebhookDelivery(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhookDeliveries[status]++
}

// ObserveWebhookDeliveryDuration records a delivery attempt duration.
func (m *InMemoryRecorder) ObserveWebhookDeliveryDuration(duration time.Duration) {
	atomic.AddUint64(&m.webhookDelivCount, 1)
	atomic.AddInt64(&m.webhookDelivNs, duration.Nanoseconds())
}

// SetWebhookQueueDepth records the current delivery backlog.
func (m *InMemoryRecorder) SetWebhookQueueDepth(depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.webhookQueueDepth = depth
}
