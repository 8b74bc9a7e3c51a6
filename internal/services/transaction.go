package services

//go:generate mockgen -source=transaction.go -destination=mock_transaction.go -package=services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-finance-ledger/internal/csvimport"
	"github.com/sbilibin2017/gw-finance-ledger/internal/ledger"
	"github.com/sbilibin2017/gw-finance-ledger/internal/logger"
	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
	"github.com/sbilibin2017/gw-finance-ledger/internal/txhooks"
)

const (
	// amountPlaces is the number of decimal places amounts are stored with.
	amountPlaces = 2

	// publishTimeout bounds a single ledger event write.
	publishTimeout = 5 * time.Second
)

// maxAmount is the first magnitude a NUMERIC(20,2) column can not hold.
var maxAmount = decimal.New(1, 18)

// TransactionWriter defines transaction write operations.
type TransactionWriter interface {
	Create(ctx context.Context, t models.Transaction) (*models.Transaction, error)           // Inserts a decomposed transaction
	Update(ctx context.Context, t models.Transaction) (*models.Transaction, error)           // Overwrites mutable fields, nil if missing
	Delete(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)        // Removes a transaction, nil if missing
	DeleteByImport(ctx context.Context, csvImportID uuid.UUID) ([]models.Transaction, error) // Removes an import batch
}

// TransactionReader defines transaction read operations.
type TransactionReader interface {
	GetByID(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)          // Returns nil if missing
	GetByIDForUpdate(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) // Same, row-locked until the database transaction ends
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
}

// CategoryGetter looks up a category.
type CategoryGetter interface {
	GetByID(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) // Returns nil if missing
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// TransactionService records ledger transactions and keeps wallet balances in step.
type TransactionService struct {
	writeRepo    TransactionWriter
	readRepo     TransactionReader
	walletRepo   WalletReader
	categoryRepo CategoryGetter
	engine       BalanceEngine
	kafkaWriter  KafkaWriter
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	writeRepo TransactionWriter,
	readRepo TransactionReader,
	walletRepo WalletReader,
	categoryRepo CategoryGetter,
	engine BalanceEngine,
	kafkaWriter KafkaWriter,
) *TransactionService {
	return &TransactionService{
		writeRepo:    writeRepo,
		readRepo:     readRepo,
		walletRepo:   walletRepo,
		categoryRepo: categoryRepo,
		engine:       engine,
		kafkaWriter:  kafkaWriter,
	}
}

// publishEvent publishes a ledger event keyed by wallet id once the database
// transaction bound to ctx has committed, so a rolled back change is never
// announced. Publishing failures are logged and never fail the operation.
func (s *TransactionService) publishEvent(ctx context.Context, event models.LedgerEvent) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "operation", event.Operation, "wallet_id", event.WalletID)
		return
	}

	event.EventID = uuid.NewString()
	event.Timestamp = time.Now().Unix()

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal ledger event for Kafka", "operation", event.Operation, "wallet_id", event.WalletID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.WalletID.String()),
		Value: data,
	}

	txhooks.AfterCommit(ctx, func() {
		// the request may already be finished when the hook runs
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		if err := s.kafkaWriter.WriteMessages(pubCtx, msg); err != nil {
			logger.Log.Errorw("Failed to publish ledger event to Kafka", "event_id", event.EventID, "wallet_id", event.WalletID, "error", err)
		} else {
			logger.Log.Infow("Ledger event published to Kafka", "event_id", event.EventID, "operation", event.Operation, "wallet_id", event.WalletID, "delta", event.Delta)
		}
	})
}

func (s *TransactionService) requireWallet(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		logger.Log.Errorw("failed to get wallet", "walletID", walletID, "error", err)
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}

func (s *TransactionService) requireCategory(ctx context.Context, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		logger.Log.Errorw("failed to get category", "categoryID", categoryID, "error", err)
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func validateTransaction(t *models.Transaction) error {
	t.Description = strings.TrimSpace(t.Description)
	if t.ExtraInfo != nil {
		extra := strings.TrimSpace(*t.ExtraInfo)
		if extra == "" {
			t.ExtraInfo = nil
		} else {
			t.ExtraInfo = &extra
		}
	}
	t.Value = t.Value.Round(amountPlaces)
	if t.Value.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: value is out of range", ErrInvalidInput)
	}

	if t.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	t.Date = t.Date.UTC()
	return nil
}

// CreateTransaction records a transaction in a wallet and adds its value to the wallet balance.
// The owner is taken from the wallet.
func (s *TransactionService) CreateTransaction(ctx context.Context, in models.TransactionInput) (*models.Transaction, error) {
	txn := models.Transaction{
		ID:           uuid.New(),
		FromCategory: in.FromCategory,
		FromWallet:   in.FromWallet,
		Date:         in.Date,
		Description:  in.Description,
		ExtraInfo:    in.ExtraInfo,
		Value:        in.Value,
		CSVImportID:  in.CSVImportID,
	}
	if err := validateTransaction(&txn); err != nil {
		return nil, err
	}

	wallet, err := s.requireWallet(ctx, in.FromWallet)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCategory(ctx, in.FromCategory); err != nil {
		return nil, err
	}
	txn.FromUser = wallet.FromUser
	ledger.Decompose(&txn)

	created, err := s.writeRepo.Create(ctx, txn)
	if err != nil {
		logger.Log.Errorw("failed to create transaction", "walletID", txn.FromWallet, "value", txn.Value, "error", err)
		return nil, err
	}

	delta := ledger.Delta(decimal.Zero, created.Value)
	balance, err := s.engine.ApplyTransactionDelta(ctx, created.FromWallet, delta)
	if err != nil {
		logger.Log.Errorw("failed to apply transaction delta", "transactionID", created.ID, "walletID", created.FromWallet, "error", err)
		return nil, err
	}

	s.publishEvent(ctx, models.LedgerEvent{
		Operation:     models.OperationCreated,
		TransactionID: &created.ID,
		WalletID:      created.FromWallet,
		Value:         created.Value,
		Delta:         delta,
		Balance:       balance,
	})
	return created, nil
}

// GetTransactions lists transactions matching the filter, newest first.
func (s *TransactionService) GetTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.From = utcTime(filter.From)
	filter.To = utcTime(filter.To)
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: from is after to", ErrInvalidInput)
	}

	txns, err := s.readRepo.List(ctx, filter)
	if err != nil {
		logger.Log.Errorw("failed to list transactions", "error", err)
		return nil, err
	}
	return txns, nil
}

func utcTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// GetTransactionByID returns one transaction.
func (s *TransactionService) GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	txn, err := s.readRepo.GetByID(ctx, transactionID)
	if err != nil {
		logger.Log.Errorw("failed to get transaction", "transactionID", transactionID, "error", err)
		return nil, err
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	return txn, nil
}

// EditTransaction applies a patch to a transaction. A changed value moves the
// wallet balance by the difference between the new and the old value.
func (s *TransactionService) EditTransaction(ctx context.Context, transactionID uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error) {
	// The lock keeps the old value stable until the balance delta is applied.
	old, err := s.readRepo.GetByIDForUpdate(ctx, transactionID)
	if err != nil {
		logger.Log.Errorw("failed to lock transaction", "transactionID", transactionID, "error", err)
		return nil, err
	}
	if old == nil {
		return nil, ErrTransactionNotFound
	}

	txn := *old
	if patch.FromCategory != nil {
		txn.FromCategory = *patch.FromCategory
	}
	if patch.Date != nil {
		txn.Date = *patch.Date
	}
	if patch.Description != nil {
		txn.Description = *patch.Description
	}
	if patch.ExtraInfo != nil {
		txn.ExtraInfo = patch.ExtraInfo
	}
	if patch.Value != nil {
		txn.Value = *patch.Value
	}
	if err := validateTransaction(&txn); err != nil {
		return nil, err
	}
	if txn.FromCategory != old.FromCategory {
		if _, err := s.requireCategory(ctx, txn.FromCategory); err != nil {
			return nil, err
		}
	}
	ledger.Decompose(&txn)

	updated, err := s.writeRepo.Update(ctx, txn)
	if err != nil {
		logger.Log.Errorw("failed to update transaction", "transactionID", transactionID, "error", err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrTransactionNotFound
	}

	delta := ledger.Delta(old.Value, updated.Value)
	balance, err := s.engine.ApplyTransactionDelta(ctx, updated.FromWallet, delta)
	if err != nil {
		logger.Log.Errorw("failed to apply transaction delta", "transactionID", updated.ID, "walletID", updated.FromWallet, "error", err)
		return nil, err
	}

	s.publishEvent(ctx, models.LedgerEvent{
		Operation:     models.OperationUpdated,
		TransactionID: &updated.ID,
		WalletID:      updated.FromWallet,
		Value:         updated.Value,
		Delta:         delta,
		Balance:       balance,
	})
	return updated, nil
}

// DeleteTransaction removes a transaction and subtracts its value from the wallet balance.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	deleted, err := s.writeRepo.Delete(ctx, transactionID)
	if err != nil {
		logger.Log.Errorw("failed to delete transaction", "transactionID", transactionID, "error", err)
		return nil, err
	}
	if deleted == nil {
		return nil, ErrTransactionNotFound
	}

	delta := ledger.Delta(deleted.Value, decimal.Zero)
	balance, err := s.engine.ApplyTransactionDelta(ctx, deleted.FromWallet, delta)
	if err != nil {
		logger.Log.Errorw("failed to apply transaction delta", "transactionID", deleted.ID, "walletID", deleted.FromWallet, "error", err)
		return nil, err
	}

	s.publishEvent(ctx, models.LedgerEvent{
		Operation:     models.OperationDeleted,
		TransactionID: &deleted.ID,
		WalletID:      deleted.FromWallet,
		Value:         decimal.Zero,
		Delta:         delta,
		Balance:       balance,
	})
	return deleted, nil
}

// ImportCSV records every row of a CSV file as a transaction of one wallet and
// category. All rows share one import id, and the wallet balance moves once by
// the batch total.
func (s *TransactionService) ImportCSV(ctx context.Context, walletID, categoryID uuid.UUID, r io.Reader) (*models.ImportResult, error) {
	rows, err := csvimport.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	wallet, err := s.requireWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	importID := uuid.New()
	total := decimal.Zero
	for _, row := range rows {
		txn := models.Transaction{
			ID:           uuid.New(),
			FromCategory: categoryID,
			FromWallet:   walletID,
			FromUser:     wallet.FromUser,
			Date:         row.Date,
			Description:  row.Description,
			ExtraInfo:    row.ExtraInfo,
			Value:        row.Value,
			CSVImportID:  &importID,
		}
		if err := validateTransaction(&txn); err != nil {
			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}
		ledger.Decompose(&txn)

		created, err := s.writeRepo.Create(ctx, txn)
		if err != nil {
			logger.Log.Errorw("failed to create imported transaction", "csvImportID", importID, "line", row.Line, "error", err)
			return nil, err
		}
		total = total.Add(created.Value)
	}

	balance, err := s.engine.ApplyTransactionDelta(ctx, walletID, total)
	if err != nil {
		logger.Log.Errorw("failed to apply import delta", "csvImportID", importID, "walletID", walletID, "error", err)
		return nil, err
	}
	logger.Log.Infow("csv imported", "csvImportID", importID, "walletID", walletID, "count", len(rows), "total", total)

	s.publishEvent(ctx, models.LedgerEvent{
		Operation:   models.OperationImported,
		CSVImportID: &importID,
		WalletID:    walletID,
		Value:       total,
		Delta:       total,
		Balance:     balance,
	})

	return &models.ImportResult{
		CSVImportID: importID,
		WalletIDs:   []uuid.UUID{walletID},
		Count:       len(rows),
		Total:       total,
	}, nil
}

// RollbackImport deletes every transaction of an import batch and subtracts
// the batch sum from each affected wallet.
func (s *TransactionService) RollbackImport(ctx context.Context, csvImportID uuid.UUID) (*models.ImportResult, error) {
	deleted, err := s.writeRepo.DeleteByImport(ctx, csvImportID)
	if err != nil {
		logger.Log.Errorw("failed to delete import", "csvImportID", csvImportID, "error", err)
		return nil, err
	}
	if len(deleted) == 0 {
		return nil, ErrImportNotFound
	}

	var walletIDs []uuid.UUID
	sums := make(map[uuid.UUID]decimal.Decimal)
	total := decimal.Zero
	for _, t := range deleted {
		if _, ok := sums[t.FromWallet]; !ok {
			walletIDs = append(walletIDs, t.FromWallet)
		}
		sums[t.FromWallet] = sums[t.FromWallet].Add(t.Value)
		total = total.Add(t.Value)
	}

	for _, walletID := range walletIDs {
		delta := sums[walletID].Neg()
		balance, err := s.engine.ApplyTransactionDelta(ctx, walletID, delta)
		if errors.Is(err, ErrWalletNotFound) {
			logger.Log.Warnw("wallet of rolled back import no longer exists", "csvImportID", csvImportID, "walletID", walletID)
			continue
		}
		if err != nil {
			logger.Log.Errorw("failed to apply rollback delta", "csvImportID", csvImportID, "walletID", walletID, "error", err)
			return nil, err
		}

		s.publishEvent(ctx, models.LedgerEvent{
			Operation:   models.OperationRollback,
			CSVImportID: &csvImportID,
			WalletID:    walletID,
			Value:       decimal.Zero,
			Delta:       delta,
			Balance:     balance,
		})
	}
	logger.Log.Infow("csv import rolled back", "csvImportID", csvImportID, "count", len(deleted), "total", total)

	return &models.ImportResult{
		CSVImportID: csvImportID,
		WalletIDs:   walletIDs,
		Count:       len(deleted),
		Total:       total,
	}, nil
}
