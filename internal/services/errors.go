package services

import (
	"errors"

	"github.com/sbilibin2017/gw-finance-ledger/internal/ledger"
)

var (
	// ErrWalletNotFound is returned when the referenced wallet does not exist.
	ErrWalletNotFound = ledger.ErrWalletNotFound
	// ErrTransactionNotFound is returned when the referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrCategoryNotFound is returned when the referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrImportNotFound is returned when no transaction carries the given import id.
	ErrImportNotFound = errors.New("csv import not found")
	// ErrCategoryInUse is returned when deleting a category that transactions still reference.
	ErrCategoryInUse = errors.New("category is referenced by transactions")
	// ErrInvalidInput wraps every validation failure.
	ErrInvalidInput = errors.New("invalid input")
)
