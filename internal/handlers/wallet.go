package handlers

//go:generate mockgen -source=wallet.go -destination=mock_wallet.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-finance-ledger/internal/middlewares"
	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

// WalletManager defines the wallet operations used by the wallet handlers.
type WalletManager interface {
	CreateWallet(ctx context.Context, in models.WalletInput) (*models.Wallet, error)
	GetWallets(ctx context.Context, fromUser *uuid.UUID) ([]models.Wallet, error)
	GetWalletByID(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error)
	EditWallet(ctx context.Context, walletID uuid.UUID, in models.WalletInput) (*models.Wallet, error)
	DeleteWallet(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error)
}

// CreateWalletRequest represents the JSON body for creating a wallet
// swagger:model CreateWalletRequest
type CreateWalletRequest struct {
	// Owner of the wallet
	// required: true
	FromUser uuid.UUID `json:"fromUser"`

	// Wallet name
	// required: true
	// default: Main
	Name string `json:"name"`

	// Free text description
	Description string `json:"description"`

	// Wallet currency, USD when empty
	// default: USD
	Currency string `json:"currency"`
}

// EditWalletRequest represents the JSON body for editing a wallet
// swagger:model EditWalletRequest
type EditWalletRequest struct {
	// Wallet name
	// required: true
	// default: Savings
	Name string `json:"name"`

	// Free text description
	Description string `json:"description"`

	// Wallet currency
	// default: USD
	Currency string `json:"currency"`
}

// NewCreateWalletHandler returns an HTTP handler for creating a wallet.
// @Summary Create wallet
// @Description Creates a wallet with a zero balance.
// @Tags wallets
// @Accept json
// @Produce json
// @Param request body handlers.CreateWalletRequest true "Wallet"
// @Success 201 {object} models.Wallet
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Router /wallets [post]
func NewCreateWalletHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateWalletRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		wallet, err := svc.CreateWallet(r.Context(), models.WalletInput{
			FromUser:    req.FromUser,
			Name:        req.Name,
			Description: req.Description,
			Currency:    req.Currency,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, wallet)
	}
}

// NewListWalletsHandler returns an HTTP handler listing wallets.
// @Summary List wallets
// @Description Lists all wallets, or those of one user when fromUser is given.
// @Tags wallets
// @Produce json
// @Param fromUser query string false "Owner id"
// @Success 200 {array} models.Wallet
// @Failure 400 {object} handlers.ErrorResponse "Invalid owner id"
// @Router /wallets [get]
func NewListWalletsHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fromUser, err := uuidQuery(r, "fromUser")
		if err != nil {
			writeError(w, err)
			return
		}

		wallets, err := svc.GetWallets(r.Context(), fromUser)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wallets)
	}
}

// NewWalletsFromUserHandler returns an HTTP handler listing the wallets of the authenticated user.
// @Summary List own wallets
// @Description Lists the wallets of the user identified by the bearer token.
// @Tags wallets
// @Produce json
// @Success 200 {array} models.Wallet
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /wallets/from-user [get]
// @Security BearerAuth
func NewWalletsFromUserHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFromContext(r.Context())
		if !ok {
			writeErrorMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		wallets, err := svc.GetWallets(r.Context(), &userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wallets)
	}
}

// NewGetWalletHandler returns an HTTP handler for reading one wallet.
// @Summary Get wallet
// @Tags wallets
// @Produce json
// @Param id path string true "Wallet id"
// @Success 200 {object} models.Wallet
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Router /wallets/{id} [get]
func NewGetWalletHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		walletID, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		wallet, err := svc.GetWalletByID(r.Context(), walletID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wallet)
	}
}

// NewEditWalletHandler returns an HTTP handler for editing a wallet.
// @Summary Edit wallet
// @Description Changes name, description and currency. The balance is derived from transactions and cannot be edited.
// @Tags wallets
// @Accept json
// @Produce json
// @Param id path string true "Wallet id"
// @Param request body handlers.EditWalletRequest true "Wallet fields"
// @Success 200 {object} models.Wallet
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Router /wallets/{id} [put]
func NewEditWalletHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		walletID, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		var req EditWalletRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		wallet, err := svc.EditWallet(r.Context(), walletID, models.WalletInput{
			Name:        req.Name,
			Description: req.Description,
			Currency:    req.Currency,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wallet)
	}
}

// NewDeleteWalletHandler returns an HTTP handler for deleting a wallet.
// @Summary Delete wallet
// @Description Removes the wallet together with its transactions and returns it.
// @Tags wallets
// @Produce json
// @Param id path string true "Wallet id"
// @Success 200 {object} models.Wallet
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Router /wallets/{id} [delete]
func NewDeleteWalletHandler(svc WalletManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		walletID, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}

		wallet, err := svc.DeleteWallet(r.Context(), walletID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, wallet)
	}
}
