package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chronoshop/chronoshop/internal/auth"
	"github.com/chronoshop/chronoshop/internal/handler/dto"
	"github.com/chronoshop/chronoshop/internal/service"
)

// CategoryHandler handles public category requests.
type CategoryHandler struct {
	svc    *service.CatalogService
	logger *slog.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(svc *service.CatalogService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /api/v1/categories.
// Admin callers see inactive categories too.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := auth.IsAdminFromContext(r.Context())

	categories, err := h.svc.ListCategories(r.Context(), includeInactive)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCategoryListResponse(categories))
}

// Get handles GET /api/v1/categories/{id}.
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Category ID is required")
		return
	}

	category, err := h.svc.GetCategory(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCategoryResponse(category))
}

// handleServiceError maps category service errors to HTTP responses.
func (h *CategoryHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
