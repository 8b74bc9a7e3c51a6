package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

// Classify splits a signed value into its non-negative credit and debit parts.
// Non-negative values are credits, negative values are debits.
func Classify(value decimal.Decimal) (credit, debit decimal.Decimal) {
	if value.IsNegative() {
		return decimal.Zero, value.Neg()
	}
	return value, decimal.Zero
}

// Decompose fills CreditValue and DebitValue of t from its Value.
func Decompose(t *models.Transaction) {
	t.CreditValue, t.DebitValue = Classify(t.Value)
}

// CheckDecomposition verifies that the stored credit/debit pair of t is the
// one Classify derives from its value.
func CheckDecomposition(t models.Transaction) error {
	credit, debit := Classify(t.Value)
	if !credit.Equal(t.CreditValue) || !debit.Equal(t.DebitValue) {
		return &InvariantViolationError{
			TransactionID: t.ID,
			Value:         t.Value,
			Credit:        t.CreditValue,
			Debit:         t.DebitValue,
		}
	}
	return nil
}
