package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/asset-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-tracker/internal/models"
)

// MockService реализует интерфейс list.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userUID string) ([]*models.Asset, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Asset), args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	user := &models.User{UID: "user123", Username: "testuser"}

	tests := []struct {
		name           string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешный список",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "user123").Return([]*models.Asset{
					{ID: 2, Name: "Monitor", SerialNumber: "SN-002", UserUID: "user123"},
					{ID: 1, Name: "Laptop", SerialNumber: "SN-001", UserUID: "user123"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","data":{"assets":[
				{"id":2,"name":"Monitor","serial_number":"SN-002","responsible":null,"assignment_date":"0001-01-01T00:00:00Z","condition":null,"notes":null},
				{"id":1,"name":"Laptop","serial_number":"SN-001","responsible":null,"assignment_date":"0001-01-01T00:00:00Z","condition":null,"notes":null}]}}`,
		},
		{
			// nil-срез от сервиса должен сериализоваться как [], а не null
			name:     "пустой список",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "user123").Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"assets":[]}}`,
		},
		{
			name:           "отсутствует авторизация",
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:     "ошибка сервиса",
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything, "user123").Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not list assets"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/assets", nil)
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			if tt.withUser {
				ctx = context.WithValue(ctx, middlewarectx.User, user)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
