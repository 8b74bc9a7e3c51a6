package services

//go:generate mockgen -source=category.go -destination=mock_category.go -package=services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-finance-ledger/internal/logger"
	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

// CategoryStore defines category persistence.
type CategoryStore interface {
	Create(ctx context.Context, fromUser uuid.UUID, name, description string) (*models.Category, error)
	GetByID(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) // Returns nil if missing
	List(ctx context.Context, fromUser *uuid.UUID) ([]models.Category, error)
	Delete(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) // Returns nil if missing
}

// CategoryUsageCounter counts transactions referencing a category.
type CategoryUsageCounter interface {
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error)
}

// CategoryService handles transaction categories.
type CategoryService struct {
	repo  CategoryStore
	usage CategoryUsageCounter
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo CategoryStore, usage CategoryUsageCounter) *CategoryService {
	return &CategoryService{repo: repo, usage: usage}
}

// CreateCategory creates a category owned by fromUser.
func (s *CategoryService) CreateCategory(ctx context.Context, fromUser uuid.UUID, name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if fromUser == uuid.Nil {
		return nil, fmt.Errorf("%w: category owner is required", ErrInvalidInput)
	}

	category, err := s.repo.Create(ctx, fromUser, name, strings.TrimSpace(description))
	if err != nil {
		logger.Log.Errorw("failed to create category", "userID", fromUser, "name", name, "error", err)
		return nil, err
	}
	return category, nil
}

// GetCategories lists categories, optionally only those of fromUser.
func (s *CategoryService) GetCategories(ctx context.Context, fromUser *uuid.UUID) ([]models.Category, error) {
	categories, err := s.repo.List(ctx, fromUser)
	if err != nil {
		logger.Log.Errorw("failed to list categories", "userID", fromUser, "error", err)
		return nil, err
	}
	return categories, nil
}

// GetCategoryByID returns one category.
func (s *CategoryService) GetCategoryByID(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		logger.Log.Errorw("failed to get category", "categoryID", categoryID, "error", err)
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// DeleteCategory removes a category that no transaction references.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	count, err := s.usage.CountByCategory(ctx, categoryID)
	if err != nil {
		logger.Log.Errorw("failed to count category usage", "categoryID", categoryID, "error", err)
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategoryInUse
	}

	category, err := s.repo.Delete(ctx, categoryID)
	if err != nil {
		logger.Log.Errorw("failed to delete category", "categoryID", categoryID, "error", err)
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}
