// Package ledger derives wallet balances from their transaction history.
//
// The engine keeps one invariant: a wallet's balance equals the sum of the
// values of its transactions. RecomputeBalance re-establishes it from scratch,
// ApplyTransactionDelta maintains it after a single mutation, and both paths
// always agree.
package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-finance-ledger/internal/logger"
	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

// TransactionLister returns every transaction of a wallet from a single
// snapshot-consistent read.
type TransactionLister interface {
	ListByWallet(ctx context.Context, walletID uuid.UUID) ([]models.Transaction, error)
}

// BalanceStore holds the cached wallet balance.
// AddBalance returns found=false when the wallet does not exist.
type BalanceStore interface {
	Exists(ctx context.Context, walletID uuid.UUID) (bool, error)
	SetBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal) error
	AddBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (balance decimal.Decimal, found bool, err error)
}

// Engine computes and maintains wallet balances.
type Engine struct {
	transactions TransactionLister
	balances     BalanceStore
}

// NewEngine creates a new Engine.
func NewEngine(transactions TransactionLister, balances BalanceStore) *Engine {
	return &Engine{
		transactions: transactions,
		balances:     balances,
	}
}

// RecomputeBalance sums the values of all transactions of the wallet, stores
// the result as the wallet's cached balance and returns it.
func (e *Engine) RecomputeBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error) {
	ok, err := e.balances.Exists(ctx, walletID)
	if err != nil {
		return decimal.Zero, &RepositoryError{Op: "find wallet", Err: err}
	}
	if !ok {
		return decimal.Zero, ErrWalletNotFound
	}

	txns, err := e.transactions.ListByWallet(ctx, walletID)
	if err != nil {
		return decimal.Zero, &RepositoryError{Op: "list transactions", Err: err}
	}

	balance, err := Sum(txns)
	if err != nil {
		logger.Log.Errorw("corrupted transaction in wallet ledger", "walletID", walletID, "error", err)
		return decimal.Zero, err
	}

	if err := e.balances.SetBalance(ctx, walletID, balance); err != nil {
		return decimal.Zero, &RepositoryError{Op: "store balance", Err: err}
	}

	logger.Log.Debugw("wallet balance recomputed", "walletID", walletID, "transactions", len(txns), "balance", balance)
	return balance, nil
}

// ApplyTransactionDelta adds the signed change caused by one transaction
// create, edit or delete to the wallet's cached balance and returns the new
// balance.
func (e *Engine) ApplyTransactionDelta(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	balance, found, err := e.balances.AddBalance(ctx, walletID, delta)
	if err != nil {
		return decimal.Zero, &RepositoryError{Op: "apply delta", Err: err}
	}
	if !found {
		return decimal.Zero, ErrWalletNotFound
	}

	logger.Log.Debugw("wallet balance delta applied", "walletID", walletID, "delta", delta, "balance", balance)
	return balance, nil
}

// Sum verifies the decomposition of every transaction and returns the sum of
// their values. Order does not matter.
func Sum(txns []models.Transaction) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range txns {
		if err := CheckDecomposition(t); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(t.Value)
	}
	return total, nil
}

// Delta returns the balance change caused by a transaction whose value goes
// from oldValue to newValue. Creation is Delta(0, v), deletion is Delta(v, 0).
func Delta(oldValue, newValue decimal.Decimal) decimal.Decimal {
	return newValue.Sub(oldValue)
}
