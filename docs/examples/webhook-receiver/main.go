// Chronoshop Webhook Receiver Example
//
// This is a minimal example of how to receive and verify Chronoshop order
// webhooks.
//
// Usage:
//   export CHRONOSHOP_WEBHOOK_SECRET="your_secret_here"
//   go run main.go
//
// Then register a webhook endpoint pointing to http://your-server:9000/webhook

package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"
)

// OrderEvent represents the webhook payload for order events.
type OrderEvent struct {
	EventType string    `json:"event_type"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      OrderData `json:"data"`
}

type OrderData struct {
	OrderID        string  `json:"order_id"`
	OrderNumber    string  `json:"order_number"`
	Status         string  `json:"status"`
	PreviousStatus string  `json:"previous_status,omitempty"`
	TotalAmount    float64 `json:"total_amount"`
	ItemCount      int     `json:"item_count"`
}

func main() {
	secret := os.Getenv("CHRONOSHOP_WEBHOOK_SECRET")
	if secret == "" {
		log.Fatal("CHRONOSHOP_WEBHOOK_SECRET environment variable is required")
	}

	// Deliveries are signed with the key derived from the secret, not the
	// secret itself. Derive it once.
	keySum := sha256.Sum256([]byte(secret))
	signingKey := hex.EncodeToString(keySum[:])

	http.HandleFunc("/webhook", webhookHandler(signingKey))
	http.HandleFunc("/health", healthHandler)

	log.Println("Starting webhook receiver on :9000")
	log.Println("Endpoint: http://localhost:9000/webhook")
	log.Fatal(http.ListenAndServe(":9000", nil))
}

func webhookHandler(signingKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Printf("Error reading body: %v", err)
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		signature := r.Header.Get("X-Chronoshop-Signature")
		timestamp := r.Header.Get("X-Chronoshop-Timestamp")
		if signature == "" || timestamp == "" {
			log.Println("Missing signature headers")
			http.Error(w, "Missing signature", http.StatusUnauthorized)
			return
		}

		if !verifySignature(signingKey, signature, timestamp, body) {
			log.Println("Invalid signature")
			http.Error(w, "Invalid signature", http.StatusUnauthorized)
			return
		}

		var event OrderEvent
		if err := json.Unmarshal(body, &event); err != nil {
			log.Printf("Error parsing JSON: %v", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		log.Printf("✓ Received %s for order %s", event.EventType, event.Data.OrderNumber)
		log.Printf("  Delivery: %s", r.Header.Get("X-Chronoshop-Delivery-Id"))
		log.Printf("  Status:   %s", event.Data.Status)
		if event.Data.PreviousStatus != "" {
			log.Printf("  Was:      %s", event.Data.PreviousStatus)
		}
		log.Printf("  Total:    %.2f (%d items)", event.Data.TotalAmount, event.Data.ItemCount)

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "received"})
	}
}

// verifySignature checks the HMAC-SHA256 signature over "{timestamp}.{body}".
// Deliveries older than 5 minutes are rejected to block replays.
func verifySignature(signingKey, signature, timestamp string, body []byte) bool {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if math.Abs(float64(time.Now().Unix()-ts)) > 300 {
		log.Println("Signature timestamp too old or in future")
		return false
	}

	mac := hmac.New(sha256.New, []byte(signingKey))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
