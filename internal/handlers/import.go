package handlers

//go:generate mockgen -source=import.go -destination=mock_import.go -package=handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
)

// maxImportSize bounds an uploaded CSV file.
const maxImportSize = 10 << 20

// TransactionImporter defines CSV import operations.
type TransactionImporter interface {
	ImportCSV(ctx context.Context, walletID, categoryID uuid.UUID, r io.Reader) (*models.ImportResult, error)
	RollbackImport(ctx context.Context, csvImportID uuid.UUID) (*models.ImportResult, error)
}

// NewImportTransactionsHandler returns an HTTP handler importing transactions from CSV.
// @Summary Import transactions from CSV
// @Description Body is a CSV file with a date,description,value[,extraInfo] header, sent raw or as the "file" field of a multipart form.
// @Tags transactions
// @Accept text/csv
// @Accept multipart/form-data
// @Produce json
// @Param walletId query string true "Wallet id"
// @Param categoryId query string true "Category id"
// @Success 201 {object} models.ImportResult
// @Failure 400 {object} handlers.ErrorResponse "Malformed CSV"
// @Failure 404 {object} handlers.ErrorResponse "Wallet or category not found"
// @Router /transactions/import [post]
func NewImportTransactionsHandler(svc TransactionImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		walletID, err := uuidQuery(r, "walletId")
		if err != nil || walletID == nil {
			writeErrorMessage(w, http.StatusBadRequest, "walletId is required")
			return
		}
		categoryID, err := uuidQuery(r, "categoryId")
		if err != nil || categoryID == nil {
			writeErrorMessage(w, http.StatusBadRequest, "categoryId is required")
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
		body := io.Reader(r.Body)
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			file, _, err := r.FormFile("file")
			if err != nil {
				writeErrorMessage(w, http.StatusBadRequest, "file is required")
				return
			}
			defer file.Close()
			body = file
		}

		result, err := svc.ImportCSV(r.Context(), *walletID, *categoryID, body)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

// NewRollbackImportHandler returns an HTTP handler undoing a CSV import.
// @Summary Roll back CSV import
// @Description Deletes every transaction of the import and restores the affected wallet balances.
// @Tags transactions
// @Produce json
// @Param csvImportId path string true "Import id"
// @Success 200 {object} models.ImportResult
// @Failure 404 {object} handlers.ErrorResponse "Import not found"
// @Router /transactions/import/{csvImportId} [delete]
func NewRollbackImportHandler(svc TransactionImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		importID, ok := uuidParam(w, r, "csvImportId")
		if !ok {
			return
		}

		result, err := svc.RollbackImport(r.Context(), importID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
