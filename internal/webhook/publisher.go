package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/chronoshop/chronoshop/internal/model"
)

// Publisher creates webhook delivery records when order events occur.
// Deliveries are written to the database; the Worker sends them.
type Publisher struct {
	repo   *Repository
	logger *slog.Logger
}

// NewPublisher creates a new webhook publisher.
func NewPublisher(repo *Repository, logger *slog.Logger) *Publisher {
	return &Publisher{
		repo:   repo,
		logger: logger.With("component", "webhook.publisher"),
	}
}

// PublishOrderCreated fans out an order.created event to all subscribed
// endpoints. The event ID is derived from the order so a replayed publish
// cannot create duplicate deliveries.
func (p *Publisher) PublishOrderCreated(ctx context.Context, order *model.Order) error {
	data := model.OrderEventData{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
	}
	return p.publish(ctx, model.EventTypeOrderCreated, order.ID, data)
}

// PublishOrderStatusChanged fans out an order.status_changed event.
func (p *Publisher) PublishOrderStatusChanged(ctx context.Context, order *model.Order, previous model.OrderStatus) error {
	data := model.OrderEventData{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		Status:         string(order.Status),
		PreviousStatus: string(previous),
		TotalAmount:    order.TotalAmount,
		ItemCount:      len(order.Items),
	}
	eventID := fmt.Sprintf("%s:%s:%s", order.ID, previous, order.Status)
	return p.publish(ctx, model.EventTypeOrderStatusChanged, eventID, data)
}

func (p *Publisher) publish(ctx context.Context, eventType model.EventType, eventID string, data model.OrderEventData) error {
	endpoints, err := p.repo.ListActiveEndpointsByEvent(ctx, eventType)
	if err != nil {
		return fmt.Errorf("list active endpoints: %w", err)
	}

	if len(endpoints) == 0 {
		return nil
	}

	// Build payload once, reuse for all endpoints
	payload := model.WebhookPayload{
		EventType: string(eventType),
		EventID:   eventID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	now := time.Now()
	for _, endpoint := range endpoints {
		delivery := &model.WebhookDelivery{
			ID:           ulid.Make().String(),
			EndpointID:   endpoint.ID,
			EventID:      eventID,
			EventType:    eventType,
			PayloadJSON:  string(payloadJSON),
			Status:       model.DeliveryStatusPending,
			AttemptCount: 0,
			MaxAttempts:  DefaultMaxAttempts,
			NextRetryAt:  now, // Immediate delivery
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := p.repo.CreateDelivery(ctx, delivery); err != nil {
			p.logger.Warn("failed to create delivery",
				"endpoint_id", endpoint.ID,
				"event_id", eventID,
				"error", err,
			)
			continue
		}

		p.logger.Debug("webhook delivery created",
			"delivery_id", delivery.ID,
			"endpoint_id", endpoint.ID,
			"event_type", string(eventType),
			"event_id", eventID,
		)
	}

	return nil
}
