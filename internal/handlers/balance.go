package handlers

//go:generate mockgen -source=balance.go -destination=mock_balance.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

// BalanceCalculator defines the balance operations used by the balance handlers.
type BalanceCalculator interface {
	CalculateWalletBalance(ctx context.Context, walletID uuid.UUID) (decimal.Decimal, error)
	ConvertWalletBalance(ctx context.Context, walletID uuid.UUID, currency string) (*models.ConvertedBalance, error)
}

// CalculateBalanceRequest represents the JSON body for recalculating a balance
// swagger:model CalculateBalanceRequest
type CalculateBalanceRequest struct {
	// Wallet to recalculate
	// required: true
	WalletID uuid.UUID `json:"walletId"`
}

// CalculateBalanceResponse represents a recalculated balance
// swagger:model CalculateBalanceResponse
type CalculateBalanceResponse struct {
	// Wallet id
	WalletID uuid.UUID `json:"walletId"`

	// Sum of the values of all wallet transactions
	// default: 90.00
	Balance decimal.Decimal `json:"balance"`
}

// NewCalculateBalanceHandler returns an HTTP handler recomputing a wallet balance from its transactions.
// @Summary Recalculate wallet balance
// @Description Sums the values of every transaction of the wallet and stores the result as its balance.
// @Tags wallets
// @Accept json
// @Produce json
// @Param request body handlers.CalculateBalanceRequest true "Wallet"
// @Success 200 {object} handlers.CalculateBalanceResponse
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Failure 409 {object} handlers.ErrorResponse "Stored transaction violates the ledger invariant"
// @Router /wallets/calculate-balance [post]
func NewCalculateBalanceHandler(svc BalanceCalculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CalculateBalanceRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.WalletID == uuid.Nil {
			writeErrorMessage(w, http.StatusBadRequest, "walletId is required")
			return
		}

		balance, err := svc.CalculateWalletBalance(r.Context(), req.WalletID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, CalculateBalanceResponse{
			WalletID: req.WalletID,
			Balance:  balance,
		})
	}
}

// NewConvertBalanceHandler returns an HTTP handler expressing a wallet balance in another currency.
// @Summary Converted wallet balance
// @Description Converts the stored wallet balance using the exchanger rate, cached in Redis.
// @Tags wallets
// @Produce json
// @Param id path string true "Wallet id"
// @Param currency query string true "Target currency (USD, RUB, EUR)"
// @Success 200 {object} models.ConvertedBalance
// @Failure 400 {object} handlers.ErrorResponse "Unsupported currency"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Failure 502 {object} handlers.ErrorResponse "Exchange rate unavailable"
// @Router /wallets/{id}/balance [get]
func NewConvertBalanceHandler(svc BalanceCalculator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		walletID, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		converted, err := svc.ConvertWalletBalance(r.Context(), walletID, r.URL.Query().Get("currency"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, converted)
	}
}
