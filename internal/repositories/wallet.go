package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

const walletColumns = `wallet_id, user_id, name, description, currency, balance, created_at, updated_at`

// WalletWriteRepository handles wallet write operations.
// It never touches the balance column; see WalletBalanceRepository.
type WalletWriteRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewWalletWriteRepository(db *sqlx.DB, txGetter TxGetter) *WalletWriteRepository {
	return &WalletWriteRepository{db: db, txGetter: txGetter}
}

// Create inserts a new wallet with a zero balance.
func (r *WalletWriteRepository) Create(ctx context.Context, in models.WalletInput) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (wallet_id, user_id, name, description, currency, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, NOW(), NOW())
		RETURNING ` + walletColumns

	args := []any{uuid.New(), in.FromUser, in.Name, in.Description, in.Currency}

	var wallet models.Wallet
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &wallet, query, args...)
	logQuery(query, args, wallet, err)
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Update changes the editable wallet fields. Returns nil when the wallet does not exist.
func (r *WalletWriteRepository) Update(ctx context.Context, walletID uuid.UUID, in models.WalletInput) (*models.Wallet, error) {
	query := `
		UPDATE wallets
		SET name = $2, description = $3, currency = $4, updated_at = NOW()
		WHERE wallet_id = $1
		RETURNING ` + walletColumns

	args := []any{walletID, in.Name, in.Description, in.Currency}

	var wallet models.Wallet
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &wallet, query, args...)
	logQuery(query, args, wallet, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Delete removes the wallet and, through the foreign key, its transactions.
// Returns the removed wallet, or nil when it did not exist.
func (r *WalletWriteRepository) Delete(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	query := `DELETE FROM wallets WHERE wallet_id = $1 RETURNING ` + walletColumns

	var wallet models.Wallet
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &wallet, query, walletID)
	logQuery(query, []any{walletID}, wallet, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// WalletReadRepository handles wallet read operations
type WalletReadRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewWalletReadRepository(db *sqlx.DB, txGetter TxGetter) *WalletReadRepository {
	return &WalletReadRepository{db: db, txGetter: txGetter}
}

// GetByID returns the wallet, or nil when it does not exist.
func (r *WalletReadRepository) GetByID(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE wallet_id = $1`

	var wallet models.Wallet
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &wallet, query, walletID)
	logQuery(query, []any{walletID}, wallet, err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// List returns all wallets, optionally only those owned by fromUser.
func (r *WalletReadRepository) List(ctx context.Context, fromUser *uuid.UUID) ([]models.Wallet, error) {
	query := `
		SELECT ` + walletColumns + `
		FROM wallets
		WHERE ($1::UUID IS NULL OR user_id = $1)
		ORDER BY created_at, wallet_id
	`

	wallets := []models.Wallet{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &wallets, query, fromUser)
	logQuery(query, []any{fromUser}, len(wallets), err)
	if err != nil {
		return nil, err
	}
	return wallets, nil
}

// WalletBalanceRepository owns the cached balance column of wallets.
// It is the only writer of that column.
type WalletBalanceRepository struct {
	db       *sqlx.DB
	txGetter TxGetter
}

func NewWalletBalanceRepository(db *sqlx.DB, txGetter TxGetter) *WalletBalanceRepository {
	return &WalletBalanceRepository{db: db, txGetter: txGetter}
}

// Exists reports whether the wallet exists. Inside a transaction the wallet
// row stays locked until commit, so concurrent deltas wait for a recompute.
func (r *WalletBalanceRepository) Exists(ctx context.Context, walletID uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM wallets WHERE wallet_id = $1 FOR NO KEY UPDATE)`

	var exists bool
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &exists, query, walletID)
	logQuery(query, []any{walletID}, exists, err)
	return exists, err
}

// SetBalance overwrites the cached balance with a recomputed value.
func (r *WalletBalanceRepository) SetBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal) error {
	const query = `UPDATE wallets SET balance = $2, updated_at = NOW() WHERE wallet_id = $1`

	res, err := executor(ctx, r.db, r.txGetter).ExecContext(ctx, query, walletID, balance)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{walletID, balance}, rowsAffected, err)
	return err
}

// AddBalance atomically adds delta to the cached balance and returns the result.
// found is false when the wallet does not exist.
func (r *WalletBalanceRepository) AddBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, bool, error) {
	const query = `
		UPDATE wallets
		SET balance = balance + $2, updated_at = NOW()
		WHERE wallet_id = $1
		RETURNING balance
	`

	var balance decimal.Decimal
	err := sqlx.GetContext(ctx, executor(ctx, r.db, r.txGetter), &balance, query, walletID, delta)
	logQuery(query, []any{walletID, delta}, balance, err)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return balance, true, nil
}

// ListBalances returns every wallet id with its cached balance.
func (r *WalletBalanceRepository) ListBalances(ctx context.Context) ([]models.WalletBalance, error) {
	const query = `SELECT wallet_id, balance FROM wallets ORDER BY wallet_id`

	balances := []models.WalletBalance{}
	err := sqlx.SelectContext(ctx, executor(ctx, r.db, r.txGetter), &balances, query)
	logQuery(query, nil, len(balances), err)
	if err != nil {
		return nil, err
	}
	return balances, nil
}
