package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chronoshop/chronoshop/internal/auth"
	"github.com/chronoshop/chronoshop/internal/handler/dto"
	"github.com/chronoshop/chronoshop/internal/repository"
	"github.com/chronoshop/chronoshop/internal/service"
)

// OrderHandler handles checkout and order requests. All routes require auth.
type OrderHandler struct {
	svc    *service.OrderService
	logger *slog.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		svc:    svc,
		logger: logger,
	}
}

// Checkout handles POST /api/v1/orders.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	order, err := h.svc.Checkout(r.Context(), service.CheckoutInput{
		UserID:        userID,
		Shipping:      req.Shipping.ToShippingInfo(),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("order_placed",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"user_id", userID,
		"total_amount", order.TotalAmount,
		"item_count", len(order.Items),
	)

	writeJSON(w, http.StatusCreated, dto.ToOrderResponse(order))
}

// List handles GET /api/v1/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	query := r.URL.Query()

	limit := 20
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	result, err := h.svc.ListOrders(r.Context(), service.ListOrdersInput{
		UserID: userID,
		Cursor: query.Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToOrderListResponse(result.Orders, result.NextCursor, result.HasMore))
}

// Get handles GET /api/v1/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Order ID is required")
		return
	}

	order, err := h.svc.GetOrder(r.Context(), id, authCtx.UserID, authCtx.IsAdmin)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToOrderResponse(order))
}

// Cancel handles POST /api/v1/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.MustAuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Order ID is required")
		return
	}

	order, err := h.svc.CancelOrder(r.Context(), id, authCtx.UserID, authCtx.IsAdmin)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("order_cancelled",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"user_id", authCtx.UserID,
	)

	writeJSON(w, http.StatusOK, dto.ToOrderResponse(order))
}

// handleServiceError maps order service errors to HTTP responses.
func (h *OrderHandler) handleServiceError(w http.ResponseWriter, err error) {
	var stockErr *repository.StockError

	switch {
	case errors.Is(err, service.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "EMPTY_CART", "Cart is empty")
	case errors.Is(err, service.ErrInvalidShipping):
		writeError(w, http.StatusBadRequest, "INVALID_SHIPPING", "Invalid shipping information")
	case errors.As(err, &stockErr):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{
			Error:   "Insufficient stock",
			Code:    "INSUFFICIENT_STOCK",
			Details: stockErr,
		})
	case errors.Is(err, repository.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "INSUFFICIENT_STOCK", "Insufficient stock")
	case errors.Is(err, service.ErrProductUnavailable):
		writeError(w, http.StatusConflict, "PRODUCT_UNAVAILABLE", "A cart product is no longer available")
	case errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, service.ErrOrderNotCancellable):
		writeError(w, http.StatusConflict, "ORDER_NOT_CANCELLABLE", "Order can no longer be cancelled")
	case errors.Is(err, service.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, "INVALID_CURSOR", "Invalid pagination cursor")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
