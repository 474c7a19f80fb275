package subscription

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	billingservice "github.com/magabrotheeeer/asset-tracker/internal/services/billing"
)

const testSecret = "subscription_webhook_secret"

// MockService реализует интерфейс subscription.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ApplySubscriptionUpdate(ctx context.Context, customerID, subscriptionID, status string) error {
	args := m.Called(ctx, customerID, subscriptionID, status)
	return args.Error(0)
}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestSubscriptionWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	updatedEvent := []byte(`{
		"type": "customer.subscription.updated",
		"data": {"object": {"id": "sub_1", "customer": "cus_1", "status": "past_due"}}
	}`)
	deletedEvent := []byte(`{
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_1", "customer": "cus_1", "status": "canceled"}}
	}`)

	tests := []struct {
		name           string
		body           []byte
		signature      string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "обновление статуса подписки",
			body:      updatedEvent,
			signature: sign(testSecret, updatedEvent),
			setupMock: func(m *MockService) {
				m.On("ApplySubscriptionUpdate", mock.Anything, "cus_1", "sub_1", "past_due").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"received":true}`,
		},
		{
			name:      "удаление подписки трактуется как отмена",
			body:      deletedEvent,
			signature: sign(testSecret, deletedEvent),
			setupMock: func(m *MockService) {
				m.On("ApplySubscriptionUpdate", mock.Anything, "cus_1", "sub_1", "canceled").Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"received":true}`,
		},
		{
			name:           "неверная подпись",
			body:           updatedEvent,
			signature:      "bogus-signature",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid signature"}`,
		},
		{
			name:      "неизвестный клиент требует повторной доставки",
			body:      updatedEvent,
			signature: sign(testSecret, updatedEvent),
			setupMock: func(m *MockService) {
				m.On("ApplySubscriptionUpdate", mock.Anything, "cus_1", "sub_1", "past_due").
					Return(billingservice.ErrCustomerNotFound)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to process event"}`,
		},
		{
			name: "чужой тип события игнорируется",
			body: []byte(`{"type":"invoice.paid","data":{"object":{}}}`),
			signature: sign(testSecret,
				[]byte(`{"type":"invoice.paid","data":{"object":{}}}`)),
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"received":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService, testSecret)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/subscription", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(SignatureHeader, tt.signature)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "req-id"))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
