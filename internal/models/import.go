package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportResult summarizes a CSV import or its rollback.
type ImportResult struct {
	CSVImportID uuid.UUID       `json:"csvImportId"`
	WalletIDs   []uuid.UUID     `json:"walletIds"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
}
