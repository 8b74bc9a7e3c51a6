package handlers

//go:generate mockgen -source=category.go -destination=mock_category.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

// CategoryManager defines the category operations used by the category handlers.
type CategoryManager interface {
	CreateCategory(ctx context.Context, fromUser uuid.UUID, name, description string) (*models.Category, error)
	GetCategories(ctx context.Context, fromUser *uuid.UUID) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, categoryID uuid.UUID) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) (*models.Category, error)
}

// CreateCategoryRequest represents the JSON body for creating a category
// swagger:model CreateCategoryRequest
type CreateCategoryRequest struct {
	// Owner of the category
	// required: true
	FromUser uuid.UUID `json:"fromUser"`

	// Category name
	// required: true
	// default: Groceries
	Name string `json:"name"`

	// Free text description
	Description string `json:"description"`
}

// NewCreateCategoryHandler returns an HTTP handler creating a category.
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param request body handlers.CreateCategoryRequest true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Router /categories [post]
func NewCreateCategoryHandler(svc CategoryManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateCategoryRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		category, err := svc.CreateCategory(r.Context(), req.FromUser, req.Name, req.Description)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, category)
	}
}

// NewListCategoriesHandler returns an HTTP handler listing categories.
// @Summary List categories
// @Tags categories
// @Produce json
// @Param fromUser query string false "Owner id"
// @Success 200 {array} models.Category
// @Router /categories [get]
func NewListCategoriesHandler(svc CategoryManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fromUser, err := uuidQuery(r, "fromUser")
		if err != nil {
			writeError(w, err)
			return
		}

		categories, err := svc.GetCategories(r.Context(), fromUser)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

// NewGetCategoryHandler returns an HTTP handler reading one category.
// @Summary Get category
// @Tags categories
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} models.Category
// @Failure 404 {object} handlers.ErrorResponse "Category not found"
// @Router /categories/{id} [get]
func NewGetCategoryHandler(svc CategoryManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		category, err := svc.GetCategoryByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, category)
	}
}

// NewDeleteCategoryHandler returns an HTTP handler deleting an unused category.
// @Summary Delete category
// @Tags categories
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} models.Category
// @Failure 404 {object} handlers.ErrorResponse "Category not found"
// @Failure 409 {object} handlers.ErrorResponse "Category is referenced by transactions"
// @Router /categories/{id} [delete]
func NewDeleteCategoryHandler(svc CategoryManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		category, err := svc.DeleteCategory(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, category)
	}
}
