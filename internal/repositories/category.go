package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

const categoryColumns = `category_id, user_id, name, description, created_at, updated_at`

// CategoryRepository handles category reads and writes.
type CategoryRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewCategoryRepository(db *sqlx.DB, txGetter TxGetter) *CategoryRepository {
	return &CategoryRepository{db: db, txGetter: txGetter}
}

func (r *CategoryRepository) Create(ctx context.Context, fromUser uuid.UUID, name, description string) (*models.Category, error) {
	query := `
		INSERT INTO categories (category_id, user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + categoryColumns

	args := []any{uuid.New(), fromUser, name, description}

	var c models.Category
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &c, query, args...)
	logQuery(query, args, c, err)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID returns the category, or nil when it does not exist.
func (r *CategoryRepository) GetByID(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE category_id = $1`

	var c models.Category
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &c, query, categoryID)
	logQuery(query, []any{categoryID}, c, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context, fromUser *uuid.UUID) ([]models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE ($1::UUID IS NULL OR user_id = $1)
		ORDER BY name
	`

	categories := []models.Category{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &categories, query, fromUser)
	logQuery(query, []any{fromUser}, len(categories), err)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Delete removes the category and returns it, or nil when it did not exist.
func (r *CategoryRepository) Delete(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	query := `DELETE FROM categories WHERE category_id = $1 RETURNING ` + categoryColumns

	var c models.Category
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &c, query, categoryID)
	logQuery(query, []any{categoryID}, c, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
