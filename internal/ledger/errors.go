package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrWalletNotFound is returned when the referenced wallet does not exist.
var ErrWalletNotFound = errors.New("wallet not found")

// RepositoryError reports a failed read or write against the ledger stores.
// No partial balance is ever returned alongside it.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("ledger %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// InvariantViolationError reports a stored transaction whose credit/debit
// decomposition does not match its value.
type InvariantViolationError struct {
	TransactionID uuid.UUID
	Value         decimal.Decimal
	Credit        decimal.Decimal
	Debit         decimal.Decimal
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf(
		"transaction %s: decomposition credit=%s debit=%s does not match value %s",
		e.TransactionID, e.Credit, e.Debit, e.Value,
	)
}
