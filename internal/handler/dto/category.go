package dto

import (
	"time"

	"github.com/chronoshop/chronoshop/internal/model"
)

// CreateCategoryRequest represents the admin request body for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// UpdateCategoryRequest represents the admin request body for updating a
// category. Absent fields are left unchanged.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryListResponse represents the category listing.
type CategoryListResponse struct {
	Data []CategoryResponse `json:"data"`
}

// ToCategoryResponse converts a Category model to CategoryResponse DTO.
func ToCategoryResponse(category *model.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		ImageURL:    category.ImageURL,
		IsActive:    category.IsActive,
		CreatedAt:   category.CreatedAt,
	}
}

// ToCategoryListResponse converts a slice of Category models.
func ToCategoryListResponse(categories []*model.Category) *CategoryListResponse {
	responses := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		responses[i] = *ToCategoryResponse(category)
	}
	return &CategoryListResponse{Data: responses}
}
