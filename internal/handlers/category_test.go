package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gw-finance-ledger/internal/models"
	"github.com/sbilibin2017/gw-finance-ledger/internal/services"
)

func categoryRouter(svc CategoryManager) http.Handler {
	r := chi.NewRouter()
	r.Post("/categories", NewCreateCategoryHandler(svc))
	r.Get("/categories", NewListCategoriesHandler(svc))
	r.Get("/categories/{id}", NewGetCategoryHandler(svc))
	r.Delete("/categories/{id}", NewDeleteCategoryHandler(svc))
	return r
}

func TestCreateCategoryHandler(t *testing.T) {
	userID := uuid.New()

	ctrl := gomock.NewController(t)
	svc := NewMockCategoryManager(ctrl)
	svc.EXPECT().CreateCategory(gomock.Any(), userID, "Food", "").Return(&models.Category{ID: uuid.New(), Name: "Food"}, nil)

	body := `{"fromUser":"` + userID.String() + `","name":"Food"}`
	rr := httptest.NewRecorder()
	categoryRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/categories", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestListCategoriesHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewMockCategoryManager(ctrl)
	svc.EXPECT().GetCategories(gomock.Any(), (*uuid.UUID)(nil)).Return([]models.Category{{Name: "Food"}}, nil)

	rr := httptest.NewRecorder()
	categoryRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/categories", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGetCategoryHandler(t *testing.T) {
	id := uuid.New()

	ctrl := gomock.NewController(t)
	svc := NewMockCategoryManager(ctrl)
	svc.EXPECT().GetCategoryByID(gomock.Any(), id).Return(&models.Category{ID: id}, nil)

	rr := httptest.NewRecorder()
	categoryRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/categories/"+id.String(), nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDeleteCategoryHandler(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{name: "deleted", expectedCode: http.StatusOK},
		{name: "in use", err: services.ErrCategoryInUse, expectedCode: http.StatusConflict},
		{name: "missing", err: services.ErrCategoryNotFound, expectedCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := NewMockCategoryManager(ctrl)
			if tt.err != nil {
				svc.EXPECT().DeleteCategory(gomock.Any(), id).Return(nil, tt.err)
			} else {
				svc.EXPECT().DeleteCategory(gomock.Any(), id).Return(&models.Category{ID: id}, nil)
			}

			rr := httptest.NewRecorder()
			categoryRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/categories/"+id.String(), nil))
			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}
