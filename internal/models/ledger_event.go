package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger event operations
const (
	OperationCreated  = "created"
	OperationUpdated  = "updated"
	OperationDeleted  = "deleted"
	OperationImported = "imported"
	OperationRollback = "import_rollback"
)

// LedgerEvent describes one wallet mutation published to the event stream.
type LedgerEvent struct {
	EventID       string          `json:"event_id"`                 // Unique event identifier
	Operation     string          `json:"operation"`                // created, updated, deleted, imported or import_rollback
	TransactionID *uuid.UUID      `json:"transaction_id,omitempty"` // Affected transaction, empty for batch operations
	CSVImportID   *uuid.UUID      `json:"csv_import_id,omitempty"`  // Affected import batch
	WalletID      uuid.UUID       `json:"wallet_id"`                // Wallet whose balance changed
	Value         decimal.Decimal `json:"value"`                    // Transaction value after the operation
	Delta         decimal.Decimal `json:"delta"`                    // Signed balance change caused by the operation
	Balance       decimal.Decimal `json:"balance"`                  // Wallet balance after the operation
	Timestamp     int64           `json:"timestamp"`                // Unix timestamp (seconds)
}
