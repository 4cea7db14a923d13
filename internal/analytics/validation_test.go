package analytics

import (
	"strings"
	"testing"
	"time"
)

func TestValidateViewEventPayload(t *testing.T) {
	valid := ViewEventPayload{
		ProductID:   "prod-1",
		Referrer:    "https://example.com/path",
		UserAgent:   "TestAgent/1.0",
		VisitorHash: "0123456789abcdef",
		ViewedAt:    time.Now().UnixMilli(),
	}

	if err := ValidateViewEventPayload(valid); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	cases := []struct {
		name    string
		payload ViewEventPayload
	}{
		{"missing_product_id", ViewEventPayload{VisitorHash: "0123456789abcdef", ViewedAt: 1}},
		{"missing_visitor_hash", ViewEventPayload{ProductID: "prod-1", ViewedAt: 1}},
		{"invalid_visitor_hash", ViewEventPayload{ProductID: "prod-1", VisitorHash: "not-hex", ViewedAt: 1}},
		{"short_visitor_hash", ViewEventPayload{ProductID: "prod-1", VisitorHash: "abcdef", ViewedAt: 1}},
		{"missing_viewed_at", ViewEventPayload{ProductID: "prod-1", VisitorHash: "0123456789abcdef"}},
		{"referrer_too_long", ViewEventPayload{ProductID: "prod-1", VisitorHash: "0123456789abcdef", Referrer: strings.Repeat("r", 501), ViewedAt: 1}},
		{"user_agent_too_long", ViewEventPayload{ProductID: "prod-1", VisitorHash: "0123456789abcdef", UserAgent: strings.Repeat("u", 501), ViewedAt: 1}},
	}

	for _, tc := range cases {
		if err := ValidateViewEventPayload(tc.payload); err == nil {
			t.Fatalf("expected error for %s", tc.name)
		}
	}
}
