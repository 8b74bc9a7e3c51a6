package handlers

//go:generate mockgen -source=transaction.go -destination=mock_transaction.go -package=handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
	"github.com/sbilibin2017/gw-finance-ledger/internal/services"
)

// TransactionManager defines the transaction operations used by the transaction handlers.
type TransactionManager interface {
	CreateTransaction(ctx context.Context, in models.TransactionInput) (*models.Transaction, error)
	GetTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	GetTransactionByID(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)
	EditTransaction(ctx context.Context, transactionID uuid.UUID, patch models.TransactionPatch) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)
}

// Date accepts either 2006-01-02 or RFC3339 in JSON.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// CreateTransactionRequest represents the JSON body for creating a transaction
// swagger:model CreateTransactionRequest
type CreateTransactionRequest struct {
	// Category id
	// required: true
	FromCategory uuid.UUID `json:"fromCategory"`

	// Wallet id
	// required: true
	FromWallet uuid.UUID `json:"fromWallet"`

	// Date of the event
	// required: true
	// default: 2024-03-01
	Date Date `json:"date"`

	// Description
	// required: true
	// default: Groceries
	Description string `json:"description"`

	// Optional notes
	ExtraInfo *string `json:"extraInfo,omitempty"`

	// Signed amount, negative for expenses
	// required: true
	// default: -30.00
	Value *decimal.Decimal `json:"value"`
}

// EditTransactionRequest represents the JSON body for editing a transaction.
// Omitted fields are left unchanged.
// swagger:model EditTransactionRequest
type EditTransactionRequest struct {
	FromCategory *uuid.UUID       `json:"fromCategory,omitempty"`
	Date         *Date            `json:"date,omitempty"`
	Description  *string          `json:"description,omitempty"`
	ExtraInfo    *string          `json:"extraInfo,omitempty"`
	Value        *decimal.Decimal `json:"value,omitempty"`
}

// NewCreateTransactionHandler returns an HTTP handler recording a transaction.
// @Summary Create transaction
// @Description Records a transaction and adds its value to the wallet balance.
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body handlers.CreateTransactionRequest true "Transaction"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "Wallet or category not found"
// @Router /transactions [post]
func NewCreateTransactionHandler(svc TransactionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTransactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Value == nil {
			writeError(w, fmt.Errorf("%w: value is required", services.ErrInvalidInput))
			return
		}

		txn, err := svc.CreateTransaction(r.Context(), models.TransactionInput{
			FromCategory: req.FromCategory,
			FromWallet:   req.FromWallet,
			Date:         req.Date.Time,
			Description:  req.Description,
			ExtraInfo:    req.ExtraInfo,
			Value:        *req.Value,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, txn)
	}
}

// NewListTransactionsHandler returns an HTTP handler listing transactions.
// @Summary List transactions
// @Description Lists transactions newest first. Search matches description and extra info case-insensitively.
// @Tags transactions
// @Produce json
// @Param wallet query string false "Wallet id"
// @Param category query string false "Category id"
// @Param user query string false "Owner id"
// @Param search query string false "Text search"
// @Param from query string false "Earliest date (inclusive)"
// @Param to query string false "Latest date (inclusive)"
// @Success 200 {array} models.Transaction
// @Failure 400 {object} handlers.ErrorResponse "Invalid filter"
// @Router /transactions [get]
func NewListTransactionsHandler(svc TransactionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseTransactionFilter(r)
		if err != nil {
			writeError(w, err)
			return
		}

		txns, err := svc.GetTransactions(r.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, txns)
	}
}

func parseTransactionFilter(r *http.Request) (models.TransactionFilter, error) {
	var (
		filter models.TransactionFilter
		err    error
	)
	if filter.WalletID, err = uuidQuery(r, "wallet"); err != nil {
		return filter, err
	}
	if filter.CategoryID, err = uuidQuery(r, "category"); err != nil {
		return filter, err
	}
	if filter.UserID, err = uuidQuery(r, "user"); err != nil {
		return filter, err
	}
	if filter.From, err = timeQuery(r, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = timeQuery(r, "to"); err != nil {
		return filter, err
	}
	filter.Search = r.URL.Query().Get("search")
	return filter, nil
}

// NewGetTransactionHandler returns an HTTP handler reading one transaction.
// @Summary Get transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction id"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} handlers.ErrorResponse "Transaction not found"
// @Router /transactions/{id} [get]
func NewGetTransactionHandler(svc TransactionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		txn, err := svc.GetTransactionByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, txn)
	}
}

// NewEditTransactionHandler returns an HTTP handler editing a transaction.
// @Summary Edit transaction
// @Description Applies the given fields. A new value moves the wallet balance by the difference.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction id"
// @Param request body handlers.EditTransactionRequest true "Changed fields"
// @Success 200 {object} models.Transaction
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "Transaction not found"
// @Router /transactions/{id} [put]
func NewEditTransactionHandler(svc TransactionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		var req EditTransactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		patch := models.TransactionPatch{
			FromCategory: req.FromCategory,
			Description:  req.Description,
			ExtraInfo:    req.ExtraInfo,
			Value:        req.Value,
		}
		if req.Date != nil {
			patch.Date = &req.Date.Time
		}

		txn, err := svc.EditTransaction(r.Context(), id, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, txn)
	}
}

// NewDeleteTransactionHandler returns an HTTP handler deleting a transaction.
// @Summary Delete transaction
// @Description Removes the transaction and subtracts its value from the wallet balance.
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction id"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} handlers.ErrorResponse "Transaction not found"
// @Router /transactions/{id} [delete]
func NewDeleteTransactionHandler(svc TransactionManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		txn, err := svc.DeleteTransaction(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, txn)
	}
}
