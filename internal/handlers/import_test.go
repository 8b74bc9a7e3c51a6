package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
	"github.com/sbilibin2017/gw-finance-ledger/internal/services"
)

const sampleCSV = "date,description,value\n2024-03-01,Salary,2500\n"

func importRouter(svc TransactionImporter) http.Handler {
	r := chi.NewRouter()
	r.Post("/transactions/import", NewImportTransactionsHandler(svc))
	r.Delete("/transactions/import/{csvImportId}", NewRollbackImportHandler(svc))
	return r
}

func TestImportTransactionsHandler_RawBody(t *testing.T) {
	walletID := uuid.New()
	categoryID := uuid.New()

	ctrl := gomock.NewController(t)
	svc := NewMockTransactionImporter(ctrl)
	svc.EXPECT().ImportCSV(gomock.Any(), walletID, categoryID, gomock.Any()).
		DoAndReturn(func(_ interface{}, _, _ uuid.UUID, r io.Reader) (*models.ImportResult, error) {
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, sampleCSV, string(data))
			return &models.ImportResult{CSVImportID: uuid.New(), Count: 1}, nil
		})

	url := "/transactions/import?walletId=" + walletID.String() + "&categoryId=" + categoryID.String()
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewBufferString(sampleCSV))
	req.Header.Set("Content-Type", "text/csv")
	rr := httptest.NewRecorder()
	importRouter(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestImportTransactionsHandler_Multipart(t *testing.T) {
	walletID := uuid.New()
	categoryID := uuid.New()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	ctrl := gomock.NewController(t)
	svc := NewMockTransactionImporter(ctrl)
	svc.EXPECT().ImportCSV(gomock.Any(), walletID, categoryID, gomock.Any()).
		DoAndReturn(func(_ interface{}, _, _ uuid.UUID, r io.Reader) (*models.ImportResult, error) {
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, sampleCSV, string(data))
			return &models.ImportResult{CSVImportID: uuid.New(), Count: 1}, nil
		})

	url := "/transactions/import?walletId=" + walletID.String() + "&categoryId=" + categoryID.String()
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	importRouter(svc).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestImportTransactionsHandler_Errors(t *testing.T) {
	walletID := uuid.New()
	categoryID := uuid.New()

	ctrl := gomock.NewController(t)
	svc := NewMockTransactionImporter(ctrl)
	svc.EXPECT().ImportCSV(gomock.Any(), walletID, categoryID, gomock.Any()).Return(nil, services.ErrInvalidInput)

	rr := httptest.NewRecorder()
	importRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transactions/import?categoryId="+categoryID.String(), nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	url := "/transactions/import?walletId=" + walletID.String() + "&categoryId=" + categoryID.String()
	rr = httptest.NewRecorder()
	importRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, url, bytes.NewBufferString("garbage")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRollbackImportHandler(t *testing.T) {
	importID := uuid.New()

	ctrl := gomock.NewController(t)
	svc := NewMockTransactionImporter(ctrl)
	svc.EXPECT().RollbackImport(gomock.Any(), importID).Return(&models.ImportResult{CSVImportID: importID, Count: 3}, nil)
	svc.EXPECT().RollbackImport(gomock.Any(), importID).Return(nil, services.ErrImportNotFound)

	rr := httptest.NewRecorder()
	importRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/transactions/import/"+importID.String(), nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	importRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/transactions/import/"+importID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
