package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chronoshop/chronoshop/internal/auth"
	"github.com/chronoshop/chronoshop/internal/handler/dto"
	"github.com/chronoshop/chronoshop/internal/service"
)

// CartHandler handles shopping cart requests. All routes require auth.
type CartHandler struct {
	svc    *service.CartService
	logger *slog.Logger
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		svc:    svc,
		logger: logger,
	}
}

// Get handles GET /api/v1/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	cart, err := h.svc.GetCart(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCartResponse(cart))
}

// AddItem handles POST /api/v1/cart/items.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	cart, err := h.svc.AddItem(r.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("cart_item_added",
		"user_id", userID,
		"product_id", req.ProductID,
		"quantity", req.Quantity,
	)

	writeJSON(w, http.StatusCreated, dto.ToCartResponse(cart))
}

// UpdateItem handles PATCH /api/v1/cart/items/{id}.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	itemID := chi.URLParam(r, "id")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Cart item ID is required")
		return
	}

	var req dto.UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	cart, err := h.svc.UpdateItemQuantity(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCartResponse(cart))
}

// RemoveItem handles DELETE /api/v1/cart/items/{id}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	itemID := chi.URLParam(r, "id")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Cart item ID is required")
		return
	}

	cart, err := h.svc.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCartResponse(cart))
}

// Clear handles DELETE /api/v1/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.svc.Clear(r.Context(), userID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps cart service errors to HTTP responses.
func (h *CartHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCartItemNotFound):
		writeError(w, http.StatusNotFound, "CART_ITEM_NOT_FOUND", "Cart item not found")
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, service.ErrProductUnavailable):
		writeError(w, http.StatusConflict, "PRODUCT_UNAVAILABLE", "Product is not available for purchase")
	case errors.Is(err, service.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity is out of range")
	case errors.Is(err, service.ErrQuantityExceedsStock):
		writeError(w, http.StatusConflict, "QUANTITY_EXCEEDS_STOCK", "Quantity exceeds available stock")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
