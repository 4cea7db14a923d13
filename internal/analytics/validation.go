// Package analytics provides product view capture and processing.
package analytics

import "fmt"

const (
	maxMetaLength     = 500
	visitorHashLength = 16
)

// ValidateViewEventPayload validates view event payload fields.
func ValidateViewEventPayload(payload ViewEventPayload) error {
	if payload.ProductID == "" {
		return fmt.Errorf("product_id is required")
	}
	if payload.VisitorHash == "" {
		return fmt.Errorf("visitor_hash is required")
	}
	if len(payload.VisitorHash) != visitorHashLength || !isHex(payload.VisitorHash) {
		return fmt.Errorf("visitor_hash must be %d hex chars", visitorHashLength)
	}
	if payload.ViewedAt <= 0 {
		return fmt.Errorf("viewed_at must be set")
	}
	if len(payload.Referrer) > maxMetaLength {
		return fmt.Errorf("referrer too long")
	}
	if len(payload.UserAgent) > maxMetaLength {
		return fmt.Errorf("user_agent too long")
	}
	return nil
}

func isHex(value string) bool {
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') {
			continue
		}
		return false
	}
	return true
}
