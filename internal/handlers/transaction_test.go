package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
	"github.com/sbilibin2017/gw-finance-ledger/internal/services"
)

func transactionRouter(svc TransactionManager) http.Handler {
	r := chi.NewRouter()
	r.Post("/transactions", NewCreateTransactionHandler(svc))
	r.Get("/transactions", NewListTransactionsHandler(svc))
	r.Get("/transactions/{id}", NewGetTransactionHandler(svc))
	r.Put("/transactions/{id}", NewEditTransactionHandler(svc))
	r.Delete("/transactions/{id}", NewDeleteTransactionHandler(svc))
	return r
}

func TestCreateTransactionHandler(t *testing.T) {
	walletID := uuid.New()
	categoryID := uuid.New()

	tests := []struct {
		name         string
		body         string
		setup        func(m *MockTransactionManager)
		expectedCode int
	}{
		{
			name: "created with date only",
			body: `{"fromWallet":"` + walletID.String() + `","fromCategory":"` + categoryID.String() +
				`","date":"2024-03-01","description":"Groceries","value":-30.5}`,
			setup: func(m *MockTransactionManager) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ interface{}, in models.TransactionInput) (*models.Transaction, error) {
						assert.Equal(t, walletID, in.FromWallet)
						assert.Equal(t, categoryID, in.FromCategory)
						assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), in.Date)
						assert.True(t, decimal.RequireFromString("-30.5").Equal(in.Value))
						return &models.Transaction{ID: uuid.New(), FromWallet: walletID, Value: in.Value}, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "value as string and RFC3339 date",
			body: `{"fromWallet":"` + walletID.String() + `","fromCategory":"` + categoryID.String() +
				`","date":"2024-03-01T10:00:00Z","description":"Salary","value":"2500.00"}`,
			setup: func(m *MockTransactionManager) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(&models.Transaction{ID: uuid.New()}, nil)
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "offset date stored in UTC",
			body: `{"fromWallet":"` + walletID.String() + `","fromCategory":"` + categoryID.String() +
				`","date":"2024-03-01T10:00:00+03:00","description":"Taxi","value":"-12"}`,
			setup: func(m *MockTransactionManager) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ interface{}, in models.TransactionInput) (*models.Transaction, error) {
						assert.Equal(t, time.UTC, in.Date.Location())
						assert.Equal(t, time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC), in.Date)
						return &models.Transaction{ID: uuid.New()}, nil
					})
			},
			expectedCode: http.StatusCreated,
		},
		{
			name: "missing value",
			body: `{"fromWallet":"` + walletID.String() + `","fromCategory":"` + categoryID.String() +
				`","date":"2024-03-01","description":"Groceries"}`,
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "value out of range",
			body: `{"fromWallet":"` + walletID.String() + `","fromCategory":"` + categoryID.String() +
				`","date":"2024-03-01","description":"Groceries","value":"1e30"}`,
			setup: func(m *MockTransactionManager) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil, services.ErrInvalidInput)
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "wallet not found",
			body: `{"fromWallet":"` + walletID.String() + `","fromCategory":"` + categoryID.String() +
				`","date":"2024-03-01","description":"Groceries","value":1}`,
			setup: func(m *MockTransactionManager) {
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil, services.ErrWalletNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "bad date",
			body:         `{"date":"March 1st","description":"x","value":1}`,
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockTransactionManager(ctrl)
			if tt.setup != nil {
				tt.setup(svc)
			}

			rr := httptest.NewRecorder()
			transactionRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString(tt.body)))
			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestListTransactionsHandler(t *testing.T) {
	walletID := uuid.New()

	ctrl := gomock.NewController(t)
	svc := NewMockTransactionManager(ctrl)
	svc.EXPECT().GetTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, f models.TransactionFilter) ([]models.Transaction, error) {
			require.NotNil(t, f.WalletID)
			assert.Equal(t, walletID, *f.WalletID)
			assert.Nil(t, f.CategoryID)
			assert.Equal(t, "rent", f.Search)
			require.NotNil(t, f.From)
			assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *f.From)
			assert.Nil(t, f.To)
			return []models.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}, nil
		})

	rr := httptest.NewRecorder()
	url := "/transactions?wallet=" + walletID.String() + "&search=rent&from=2024-01-01"
	transactionRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var txns []models.Transaction
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &txns))
	assert.Len(t, txns, 2)

	svc.EXPECT().GetTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, f models.TransactionFilter) ([]models.Transaction, error) {
			require.NotNil(t, f.From)
			require.NotNil(t, f.To)
			assert.Equal(t, time.UTC, f.From.Location())
			assert.Equal(t, time.Date(2024, 2, 29, 21, 0, 0, 0, time.UTC), *f.From)
			assert.Equal(t, time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC), *f.To)
			return []models.Transaction{}, nil
		})
	rr = httptest.NewRecorder()
	url = "/transactions?from=2024-03-01T00:00:00%2B03:00&to=2024-03-01T09:30:00-05:00"
	transactionRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	for _, bad := range []string{"/transactions?wallet=1", "/transactions?to=yesterday"} {
		rr = httptest.NewRecorder()
		transactionRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, bad, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}

func TestGetTransactionHandler(t *testing.T) {
	id := uuid.New()

	ctrl := gomock.NewController(t)
	svc := NewMockTransactionManager(ctrl)
	svc.EXPECT().GetTransactionByID(gomock.Any(), id).Return(nil, services.ErrTransactionNotFound)

	rr := httptest.NewRecorder()
	transactionRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/transactions/"+id.String(), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "transaction not found", resp.Error)
}

func TestEditTransactionHandler(t *testing.T) {
	id := uuid.New()

	ctrl := gomock.NewController(t)
	svc := NewMockTransactionManager(ctrl)
	svc.EXPECT().EditTransaction(gomock.Any(), id, gomock.Any()).
		DoAndReturn(func(_ interface{}, _ uuid.UUID, p models.TransactionPatch) (*models.Transaction, error) {
			require.NotNil(t, p.Value)
			assert.True(t, decimal.RequireFromString("-30").Equal(*p.Value))
			require.NotNil(t, p.Date)
			assert.Equal(t, 2024, p.Date.Year())
			assert.Nil(t, p.Description)
			assert.Nil(t, p.FromCategory)
			return &models.Transaction{ID: id, Value: *p.Value}, nil
		})

	rr := httptest.NewRecorder()
	body := `{"value":"-30","date":"2024-05-05"}`
	transactionRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/transactions/"+id.String(), bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDeleteTransactionHandler(t *testing.T) {
	id := uuid.New()

	ctrl := gomock.NewController(t)
	svc := NewMockTransactionManager(ctrl)
	svc.EXPECT().DeleteTransaction(gomock.Any(), id).Return(&models.Transaction{ID: id}, nil)

	rr := httptest.NewRecorder()
	transactionRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/transactions/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	transactionRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/transactions/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
