package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chronoshop/chronoshop/internal/handler/dto"
	"github.com/chronoshop/chronoshop/internal/service"
)

// ProductHandler handles public catalog requests.
type ProductHandler struct {
	svc    *service.CatalogService
	logger *slog.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(svc *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 20
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	input := service.ListProductsInput{
		CategoryID:   query.Get("category_id"),
		FeaturedOnly: query.Get("featured") == "true",
		OnSaleOnly:   query.Get("on_sale") == "true",
		InStockOnly:  query.Get("in_stock") == "true",
		Search:       query.Get("search"),
		Status:       query.Get("status"),
		Cursor:       query.Get("cursor"),
		Limit:        limit,
	}

	if v := query.Get("min_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			input.MinPrice = &parsed
		}
	}
	if v := query.Get("max_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			input.MaxPrice = &parsed
		}
	}

	result, err := h.svc.ListProducts(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProductListResponse(result.Products, result.NextCursor, result.HasMore))
}

// Get handles GET /api/v1/products/{id}.
// Each successful read publishes a view event for the analytics
// pipeline (fire-and-forget).
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Product ID is required")
		return
	}

	product, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.svc.RecordView(product.ID, getClientIP(r), r.Header.Get("User-Agent"), r.Header.Get("Referer"))

	writeJSON(w, http.StatusOK, dto.ToProductResponse(product))
}

// handleServiceError maps catalog service errors to HTTP responses.
func (h *ProductHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, service.ErrInvalidCursor):
		writeError(w, http.StatusBadRequest, "INVALID_CURSOR", "Invalid pagination cursor")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// getClientIP extracts the client IP address from the request.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// Take the first IP in the chain
		for i := 0; i < len(ip); i++ {
			if ip[i] == ',' {
				return ip[:i]
			}
		}
		return ip
	}
	// Check X-Real-IP
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	// Fall back to RemoteAddr
	return r.RemoteAddr
}
