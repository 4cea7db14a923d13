package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chronoshop/chronoshop/internal/auth"
	"github.com/chronoshop/chronoshop/internal/model"
	"github.com/chronoshop/chronoshop/internal/webhook"
)

// WebhookHandler manages webhook endpoint configuration.
// All routes are admin-only; the guard runs in the middleware chain.
type WebhookHandler struct {
	repo          *webhook.Repository
	logger        *slog.Logger
	allowInsecure bool
}

// NewWebhookHandler creates a new webhook management handler.
func NewWebhookHandler(repo *webhook.Repository, logger *slog.Logger, allowInsecure bool) *WebhookHandler {
	return &WebhookHandler{
		repo:          repo,
		logger:        logger.With("handler", "webhook"),
		allowInsecure: allowInsecure,
	}
}

// Create handles POST /api/v1/admin/webhooks
func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.WebhookEndpointCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	if err := webhook.ValidateTargetURLWithOptions(req.TargetURL, webhook.ValidationOptions{AllowInsecure: h.allowInsecure}); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_URL", err.Error())
		return
	}

	eventTypes := req.EventTypes
	if len(eventTypes) == 0 {
		eventTypes = model.ValidEventTypes
	}
	for _, et := range eventTypes {
		if !model.IsValidEventType(et) {
			writeError(w, http.StatusBadRequest, "INVALID_EVENT_TYPE", "invalid event type: "+string(et))
			return
		}
	}

	secret, err := webhook.GenerateSecret()
	if err != nil {
		h.logger.Error("failed to generate secret", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create webhook")
		return
	}

	now := time.Now()
	endpoint := &model.WebhookEndpoint{
		ID:          uuid.NewString(),
		UserID:      auth.UserIDFromContext(ctx),
		TargetURL:   req.TargetURL,
		SecretHash:  webhook.HashSecret(secret),
		Enabled:     true,
		EventTypes:  eventTypes,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.repo.CreateEndpoint(ctx, endpoint); err != nil {
		h.logger.Error("failed to create endpoint", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to create webhook")
		return
	}

	h.logger.Info("webhook endpoint created",
		"endpoint_id", endpoint.ID,
		"target_host", webhook.ExtractHost(endpoint.TargetURL),
	)

	// The plaintext secret is shown once, on creation only
	writeJSON(w, http.StatusCreated, model.WebhookEndpointCreateResponse{
		WebhookEndpointResponse: endpoint.ToResponse(),
		Secret:                  secret,
	})
}

// List handles GET /api/v1/admin/webhooks
func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	endpoints, err := h.repo.ListEndpoints(r.Context())
	if err != nil {
		h.logger.Error("failed to list endpoints", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list webhooks")
		return
	}

	resp := make([]model.WebhookEndpointResponse, len(endpoints))
	for i, ep := range endpoints {
		resp[i] = ep.ToResponse()
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

// Get handles GET /api/v1/admin/webhooks/{id}
func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	endpoint, err := h.repo.GetEndpoint(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleRepoError(w, err, "failed to get webhook")
		return
	}

	writeJSON(w, http.StatusOK, endpoint.ToResponse())
}

// Update handles PATCH /api/v1/admin/webhooks/{id}
func (h *WebhookHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	endpoint, err := h.repo.GetEndpoint(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleRepoError(w, err, "failed to update webhook")
		return
	}

	var req model.WebhookEndpointUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	if req.TargetURL != nil {
		if err := webhook.ValidateTargetURLWithOptions(*req.TargetURL, webhook.ValidationOptions{AllowInsecure: h.allowInsecure}); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_URL", err.Error())
			return
		}
		endpoint.TargetURL = *req.TargetURL
	}
	if req.EventTypes != nil {
		for _, et := range *req.EventTypes {
			if !model.IsValidEventType(et) {
				writeError(w, http.StatusBadRequest, "INVALID_EVENT_TYPE", "invalid event type: "+string(et))
				return
			}
		}
		endpoint.EventTypes = *req.EventTypes
	}
	if req.Name != nil {
		endpoint.Name = *req.Name
	}
	if req.Description != nil {
		endpoint.Description = *req.Description
	}
	if req.Enabled != nil {
		endpoint.Enabled = *req.Enabled
	}

	if err := h.repo.UpdateEndpoint(ctx, endpoint); err != nil {
		h.handleRepoError(w, err, "failed to update webhook")
		return
	}

	writeJSON(w, http.StatusOK, endpoint.ToResponse())
}

// Delete handles DELETE /api/v1/admin/webhooks/{id}
func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteEndpoint(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleRepoError(w, err, "failed to delete webhook")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RotateSecret handles POST /api/v1/admin/webhooks/{id}/rotate-secret
func (h *WebhookHandler) RotateSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	endpoint, err := h.repo.GetEndpoint(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleRepoError(w, err, "failed to rotate secret")
		return
	}

	secret, err := webhook.GenerateSecret()
	if err != nil {
		h.logger.Error("failed to generate secret", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to rotate secret")
		return
	}

	if err := h.repo.UpdateEndpointSecret(ctx, endpoint.ID, webhook.HashSecret(secret)); err != nil {
		h.handleRepoError(w, err, "failed to rotate secret")
		return
	}

	h.logger.Info("webhook secret rotated", "endpoint_id", endpoint.ID)

	writeJSON(w, http.StatusOK, model.WebhookEndpointCreateResponse{
		WebhookEndpointResponse: endpoint.ToResponse(),
		Secret:                  secret,
	})
}

// ListDeliveries handles GET /api/v1/admin/webhooks/{id}/deliveries
func (h *WebhookHandler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	endpointID := chi.URLParam(r, "id")

	// Confirm the endpoint exists before listing
	if _, err := h.repo.GetEndpoint(ctx, endpointID); err != nil {
		h.handleRepoError(w, err, "failed to list deliveries")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	var statuses []string
	if v := r.URL.Query().Get("status"); v != "" {
		statuses = strings.Split(v, ",")
	}

	deliveries, total, err := h.repo.ListDeliveriesByEndpoint(ctx, endpointID, statuses, limit, offset)
	if err != nil {
		h.logger.Error("failed to list deliveries", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list deliveries")
		return
	}

	resp := make([]model.WebhookDeliveryResponse, len(deliveries))
	for i, d := range deliveries {
		resp[i] = d.ToResponse()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  resp,
		"total": total,
	})
}

// RetryDelivery handles POST /api/v1/admin/webhooks/deliveries/{deliveryID}/retry
func (h *WebhookHandler) RetryDelivery(w http.ResponseWriter, r *http.Request) {
	deliveryID := chi.URLParam(r, "deliveryID")

	if err := h.repo.ResetDeliveryForRetry(r.Context(), deliveryID); err != nil {
		if errors.Is(err, webhook.ErrDeliveryNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "no exhausted delivery to retry")
			return
		}
		h.logger.Error("failed to reset delivery", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to retry delivery")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *WebhookHandler) handleRepoError(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, webhook.ErrEndpointNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "webhook not found")
		return
	}
	h.logger.Error(logMsg, "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", logMsg)
}
