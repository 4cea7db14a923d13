package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chronoshop/chronoshop/internal/handler/dto"
	"github.com/chronoshop/chronoshop/internal/model"
	"github.com/chronoshop/chronoshop/internal/service"
)

// AdminHandler handles admin catalog, order and analytics requests.
// All routes require an authenticated admin.
type AdminHandler struct {
	catalog *service.CatalogService
	orders  *service.OrderService
	stats   *service.StatsService
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(catalog *service.CatalogService, orders *service.OrderService, stats *service.StatsService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		catalog: catalog,
		orders:  orders,
		stats:   stats,
		logger:  logger,
	}
}

// CreateProduct handles POST /api/v1/admin/products.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	product, err := h.catalog.CreateProduct(r.Context(), service.CreateProductInput{
		Name:            req.Name,
		ModelNumber:     req.ModelNumber,
		Description:     req.Description,
		Price:           req.Price,
		OriginalPrice:   req.OriginalPrice,
		StockQuantity:   req.StockQuantity,
		CategoryID:      req.CategoryID,
		MovementType:    req.MovementType,
		CaseMaterial:    req.CaseMaterial,
		CaseDiameter:    req.CaseDiameter,
		WaterResistance: req.WaterResistance,
		StrapMaterial:   req.StrapMaterial,
		IsFeatured:      req.IsFeatured,
		IsOnSale:        req.IsOnSale,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("product_created",
		"product_id", product.ID,
		"model_number", product.ModelNumber,
	)

	writeJSON(w, http.StatusCreated, dto.ToProductResponse(product))
}

// UpdateProduct handles PATCH /api/v1/admin/products/{id}.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Product ID is required")
		return
	}

	var req dto.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), service.UpdateProductInput{
		ID:              id,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		OriginalPrice:   req.OriginalPrice,
		StockQuantity:   req.StockQuantity,
		CategoryID:      req.CategoryID,
		MovementType:    req.MovementType,
		CaseMaterial:    req.CaseMaterial,
		CaseDiameter:    req.CaseDiameter,
		WaterResistance: req.WaterResistance,
		StrapMaterial:   req.StrapMaterial,
		IsActive:        req.IsActive,
		IsFeatured:      req.IsFeatured,
		IsOnSale:        req.IsOnSale,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("product_updated", "product_id", product.ID)

	writeJSON(w, http.StatusOK, dto.ToProductResponse(product))
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Product ID is required")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("product_deleted", "product_id", id)

	w.WriteHeader(http.StatusNoContent)
}

// CreateCategory handles POST /api/v1/admin/categories.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	category, err := h.catalog.CreateCategory(r.Context(), service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("category_created", "category_id", category.ID, "name", category.Name)

	writeJSON(w, http.StatusCreated, dto.ToCategoryResponse(category))
}

// UpdateCategory handles PATCH /api/v1/admin/categories/{id}.
func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Category ID is required")
		return
	}

	var req dto.UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), service.UpdateCategoryInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("category_updated", "category_id", category.ID)

	writeJSON(w, http.StatusOK, dto.ToCategoryResponse(category))
}

// UpdateOrderStatus handles PATCH /api/v1/admin/orders/{id}/status.
func (h *AdminHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Order ID is required")
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, model.OrderStatus(req.Status))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("order_status_updated",
		"order_id", order.ID,
		"status", order.Status,
	)

	writeJSON(w, http.StatusOK, dto.ToOrderResponse(order))
}

// UpdatePaymentStatus handles PATCH /api/v1/admin/orders/{id}/payment.
func (h *AdminHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Order ID is required")
		return
	}

	var req dto.UpdatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if err := dto.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	order, err := h.orders.SetPaymentStatus(r.Context(), id, model.PaymentStatus(req.PaymentStatus), req.PaymentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("order_payment_updated",
		"order_id", order.ID,
		"payment_status", order.PaymentStatus,
	)

	writeJSON(w, http.StatusOK, dto.ToOrderResponse(order))
}

// ProductDailyStats handles GET /api/v1/admin/analytics/products/{id}/daily.
func (h *AdminHandler) ProductDailyStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Product ID is required")
		return
	}

	from, to := parseDateRange(r)
	stats, err := h.stats.DailyStats(r.Context(), id, from, to)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": stats})
}

// ProductStatsSummary handles GET /api/v1/admin/analytics/products/{id}/summary.
func (h *AdminHandler) ProductStatsSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Product ID is required")
		return
	}

	from, to := parseDateRange(r)
	summary, err := h.stats.Summary(r.Context(), id, from, to)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// TopProducts handles GET /api/v1/admin/analytics/top-products.
func (h *AdminHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 50 {
			limit = parsed
		}
	}

	from, to := parseDateRange(r)
	top, err := h.stats.TopProducts(r.Context(), from, to, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": top})
}

// parseDateRange reads optional from/to query params (YYYY-MM-DD).
// Zero values are defaulted by the stats service.
func parseDateRange(r *http.Request) (time.Time, time.Time) {
	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t
		}
	}
	return from, to
}

// handleServiceError maps admin service errors to HTTP responses.
func (h *AdminHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, service.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	case errors.Is(err, service.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, service.ErrModelNumberExists):
		writeError(w, http.StatusConflict, "MODEL_NUMBER_TAKEN", "Model number already exists")
	case errors.Is(err, service.ErrCategoryExists):
		writeError(w, http.StatusConflict, "CATEGORY_NAME_TAKEN", "Category name already exists")
	case errors.Is(err, service.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, "INVALID_PRICE", "Price must be positive")
	case errors.Is(err, service.ErrInvalidStock):
		writeError(w, http.StatusBadRequest, "INVALID_STOCK", "Stock quantity cannot be negative")
	case errors.Is(err, service.ErrInvalidProductName):
		writeError(w, http.StatusBadRequest, "INVALID_NAME", "Product name is required")
	case errors.Is(err, service.ErrInvalidCategory):
		writeError(w, http.StatusBadRequest, "INVALID_NAME", "Category name is required")
	case errors.Is(err, service.ErrInvalidOrderStatus):
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Unknown order status")
	case errors.Is(err, service.ErrInvalidPaymentStatus):
		writeError(w, http.StatusBadRequest, "INVALID_PAYMENT_STATUS", "Unknown payment status")
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrOrderNotCancellable):
		writeError(w, http.StatusConflict, "INVALID_TRANSITION", "Order status transition not allowed")
	case errors.Is(err, service.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, "INVALID_DATE_RANGE", "Invalid analytics date range")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
