package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supported currency codes
const (
	USD = "USD"
	RUB = "RUB"
	EUR = "EUR"
)

// SupportedCurrencies lists the currencies a wallet can be kept in.
var SupportedCurrencies = map[string]struct{}{
	USD: {},
	RUB: {},
	EUR: {},
}

// Wallet represents a wallet row in the database
type Wallet struct {
	ID          uuid.UUID       `json:"id" db:"wallet_id"`            // Unique wallet identifier
	FromUser    uuid.UUID       `json:"fromUser" db:"user_id"`        // Identifier of the wallet's owner
	Name        string          `json:"name" db:"name"`               // Display name
	Description string          `json:"description" db:"description"` // Optional description
	Currency    string          `json:"currency" db:"currency"`       // Currency code (e.g., USD, RUB, EUR)
	Balance     decimal.Decimal `json:"balance" db:"balance"`         // Cached balance, written only by the ledger engine
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`    // Timestamp when the wallet was created
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`    // Timestamp of the last wallet update
}

// WalletInput carries the user-editable wallet fields.
type WalletInput struct {
	FromUser    uuid.UUID
	Name        string
	Description string
	Currency    string
}

// WalletBalance pairs a wallet id with its cached balance.
type WalletBalance struct {
	WalletID uuid.UUID       `db:"wallet_id"`
	Balance  decimal.Decimal `db:"balance"`
}

// ConvertedBalance is a wallet balance expressed in another currency.
type ConvertedBalance struct {
	WalletID     uuid.UUID       `json:"walletId"`
	Balance      decimal.Decimal `json:"balance"`
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Rate         decimal.Decimal `json:"rate"`
	Converted    decimal.Decimal `json:"converted"`
}
