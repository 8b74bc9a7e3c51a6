package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

const transactionColumns = `transaction_id, category_id, wallet_id, user_id, date, description, extra_info,
	value, credit_value, debit_value, csv_import_id, created_at, updated_at`

// TransactionWriteRepository handles transaction write operations
type TransactionWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewTransactionWriteRepository(db *sqlx.DB, txGetter TxGetter) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db, txGetter: txGetter}
}

// Create inserts the transaction as given, decomposition included.
func (r *TransactionWriteRepository) Create(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING ` + transactionColumns

	args := []any{
		t.ID, t.FromCategory, t.FromWallet, t.FromUser, t.Date, t.Description, t.ExtraInfo,
		t.Value, t.CreditValue, t.DebitValue, t.CSVImportID,
	}

	var created models.Transaction
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &created, query, args...)
	logQuery(query, args, created.ID, err)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update overwrites the mutable fields of the transaction. Wallet and owner never change.
// Returns nil when the transaction does not exist.
func (r *TransactionWriteRepository) Update(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET category_id = $2, date = $3, description = $4, extra_info = $5,
		    value = $6, credit_value = $7, debit_value = $8, updated_at = NOW()
		WHERE transaction_id = $1
		RETURNING ` + transactionColumns

	args := []any{t.ID, t.FromCategory, t.Date, t.Description, t.ExtraInfo, t.Value, t.CreditValue, t.DebitValue}

	var updated models.Transaction
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &updated, query, args...)
	logQuery(query, args, updated.ID, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the transaction and returns it, or nil when it did not exist.
func (r *TransactionWriteRepository) Delete(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	query := `DELETE FROM transactions WHERE transaction_id = $1 RETURNING ` + transactionColumns

	var deleted models.Transaction
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &deleted, query, transactionID)
	logQuery(query, []any{transactionID}, deleted.ID, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

// DeleteByImport removes every transaction of an import batch and returns them.
func (r *TransactionWriteRepository) DeleteByImport(ctx context.Context, csvImportID uuid.UUID) ([]models.Transaction, error) {
	query := `DELETE FROM transactions WHERE csv_import_id = $1 RETURNING ` + transactionColumns

	deleted := []models.Transaction{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &deleted, query, csvImportID)
	logQuery(query, []any{csvImportID}, len(deleted), err)
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// TransactionReadRepository handles transaction read operations
type TransactionReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewTransactionReadRepository(db *sqlx.DB, txGetter TxGetter) *TransactionReadRepository {
	return &TransactionReadRepository{db: db, txGetter: txGetter}
}

// GetByID returns the transaction, or nil when it does not exist.
func (r *TransactionReadRepository) GetByID(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	return r.get(ctx, query, transactionID)
}

// GetByIDForUpdate is GetByID that also row-locks the transaction until the
// surrounding database transaction ends. Concurrent edits of the same row
// queue here, so each one sees the value the previous one committed.
func (r *TransactionReadRepository) GetByIDForUpdate(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE`
	return r.get(ctx, query, transactionID)
}

func (r *TransactionReadRepository) get(ctx context.Context, query string, transactionID uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &t, query, transactionID)
	logQuery(query, []any{transactionID}, t.ID, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByWallet returns every transaction of the wallet in a single statement,
// which Postgres evaluates against one snapshot.
func (r *TransactionReadRepository) ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE wallet_id = $1`

	txns := []models.Transaction{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &txns, query, walletID)
	logQuery(query, []any{walletID}, len(txns), err)
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// List returns transactions matching the filter, newest first.
// Search is matched case-insensitively against description and extra info.
func (r *TransactionReadRepository) List(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE ($1::UUID IS NULL OR wallet_id = $1)
		  AND ($2::UUID IS NULL OR category_id = $2)
		  AND ($3::UUID IS NULL OR user_id = $3)
		  AND ($4::TIMESTAMP IS NULL OR date >= $4)
		  AND ($5::TIMESTAMP IS NULL OR date <= $5)
		  AND ($6::TEXT = '' OR description ILIKE $6 OR extra_info ILIKE $6)
		ORDER BY date DESC, created_at DESC
	`

	args := []any{f.WalletID, f.CategoryID, f.UserID, f.From, f.To, likePattern(f.Search)}

	txns := []models.Transaction{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &txns, query, args...)
	logQuery(query, args, len(txns), err)
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// CountByCategory returns how many transactions reference the category.
func (r *TransactionReadRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM transactions WHERE category_id = $1`

	var count int
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &count, query, categoryID)
	logQuery(query, []any{categoryID}, count, err)
	return count, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns free text into a substring ILIKE pattern. Empty stays empty.
func likePattern(search string) string {
	search = strings.TrimSpace(search)
	if search == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(search) + "%"
}
