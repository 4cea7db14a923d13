package metrics

import (
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	m := NewInMemory()

	m.IncProductCacheHit()
	m.IncProductCacheHit()
	m.IncProductCacheMiss()
	m.IncOrderPlaced()
	m.IncOrderCancelled()
	m.IncUserRegistered()
	m.IncLoginAttempt("success")
	m.IncLoginAttempt("failure")
	m.IncLoginAttempt("failure")
	m.ObserveCheckoutDuration(100 * time.Millisecond)

	snap := m.Snapshot()

	if snap.ProductCacheHits != 2 {
		t.Errorf("ProductCacheHits = %d, want 2", snap.ProductCacheHits)
	}
	if snap.ProductCacheMisses != 1 {
		t.Errorf("ProductCacheMisses = %d, want 1", snap.ProductCacheMisses)
	}
	if snap.OrdersPlaced != 1 || snap.OrdersCancelled != 1 {
		t.Errorf("orders = %d placed / %d cancelled, want 1/1", snap.OrdersPlaced, snap.OrdersCancelled)
	}
	if snap.LoginAttempts["failure"] != 2 {
		t.Errorf("failed logins = %d, want 2", snap.LoginAttempts["failure"])
	}
	if snap.CheckoutCount != 1 || snap.CheckoutTotalNs != int64(100*time.Millisecond) {
		t.Errorf("checkout observations wrong: %d / %d", snap.CheckoutCount, snap.CheckoutTotalNs)
	}
}

func TestInMemoryRecorder_AnalyticsPipeline(t *testing.T) {
	m := NewInMemory()

	m.IncAnalyticsEventPublished("success")
	m.IncAnalyticsEventProcessed("success")
	m.IncAnalyticsEventProcessed("skipped")
	m.ObserveAnalyticsBatchSize(10)
	m.ObserveAnalyticsBatchSize(20)
	m.SetAnalyticsQueueDepth(5)

	snap := m.Snapshot()

	if snap.AnalyticsPublished["success"] != 1 {
		t.Errorf("published = %d, want 1", snap.AnalyticsPublished["success"])
	}
	if snap.AnalyticsProcessed["skipped"] != 1 {
		t.Errorf("skipped = %d, want 1", snap.AnalyticsProcessed["skipped"])
	}
	if snap.AnalyticsBatchCount != 2 || snap.AnalyticsBatchTotal != 30 {
		t.Errorf("batches = %d/%d, want 2/30", snap.AnalyticsBatchCount, snap.AnalyticsBatchTotal)
	}
	if snap.AnalyticsQueueDepth != 5 {
		t.Errorf("queue depth = %d, want 5", snap.AnalyticsQueueDepth)
	}
}
