package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction represents a single dated financial event recorded in one wallet.
type Transaction struct {
	ID           uuid.UUID       `json:"id" db:"transaction_id"`                   // Unique transaction identifier
	FromCategory uuid.UUID       `json:"fromCategory" db:"category_id"`            // Category the transaction is classified under
	FromWallet   uuid.UUID       `json:"fromWallet" db:"wallet_id"`                // Wallet the transaction belongs to
	FromUser     uuid.UUID       `json:"fromUser" db:"user_id"`                    // Owner of the wallet
	Date         time.Time       `json:"date" db:"date"`                           // Point in time the event is attributed to
	Description  string          `json:"description" db:"description"`             // Free text description
	ExtraInfo    *string         `json:"extraInfo,omitempty" db:"extra_info"`      // Optional free text notes
	Value        decimal.Decimal `json:"value" db:"value"`                         // Signed amount, positive is a credit
	CreditValue  decimal.Decimal `json:"creditValue" db:"credit_value"`            // abs(Value) for credits, otherwise zero
	DebitValue   decimal.Decimal `json:"debitValue" db:"debit_value"`              // abs(Value) for debits, otherwise zero
	CSVImportID  *uuid.UUID      `json:"csvImportId,omitempty" db:"csv_import_id"` // Import batch the transaction came from
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// TransactionInput carries the fields accepted when a transaction is created.
type TransactionInput struct {
	FromCategory uuid.UUID
	FromWallet   uuid.UUID
	Date         time.Time
	Description  string
	ExtraInfo    *string
	Value        decimal.Decimal
	CSVImportID  *uuid.UUID
}

// TransactionPatch carries the optional fields of a transaction edit.
// Nil fields are left untouched.
type TransactionPatch struct {
	FromCategory *uuid.UUID
	Date         *time.Time
	Description  *string
	ExtraInfo    *string
	Value        *decimal.Decimal
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	WalletID   *uuid.UUID
	CategoryID *uuid.UUID
	UserID     *uuid.UUID
	From       *time.Time
	To         *time.Time
	Search     string // case-insensitive match on description or extra info
}
