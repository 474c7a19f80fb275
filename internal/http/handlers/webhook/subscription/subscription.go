// Package subscription реализует HTTP-обработчик вебхука событий подписки.
//
// События customer.subscription.updated и customer.subscription.deleted
// зеркалируют статус подписки в локальную базу. Событие о неизвестном
// клиенте отвечает 500, чтобы провайдер повторил доставку позже.
package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/asset-tracker/internal/http/response"
	"github.com/magabrotheeeer/asset-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/asset-tracker/internal/paymentprovider"
	billingservice "github.com/magabrotheeeer/asset-tracker/internal/services/billing"
)

// SignatureHeader — заголовок с HMAC-подписью тела вебхука.
const SignatureHeader = "X-Api-Signature"

// Service описывает интерфейс бизнес-логики применения событий подписки.
type Service interface {
	ApplySubscriptionUpdate(ctx context.Context, customerID, subscriptionID, status string) error
}

// Handler отвечает за обработку вебхука подписки.
type Handler struct {
	log     *slog.Logger
	service Service
	secret  string
}

// New создает новый Handler с переданными логгером, сервисом и секретом вебхука.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{log: log, service: service, secret: secret}
}

// ServeHTTP godoc
// @Summary Вебхук событий подписки
// @Description Зеркалирует статус подписки из событий провайдера
// @Tags Webhooks
// @Accept  json
// @Produce  json
// @Param X-Api-Signature header string true "HMAC-SHA256 подпись тела запроса"
// @Success 200 {object} map[string]any "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или некорректное тело"
// @Failure 500 {object} response.ErrorResponse "Временная ошибка, провайдер должен повторить"
// @Router /webhooks/subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook.subscription"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to read request body"))
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if !paymentprovider.VerifySignature(h.secret, body, signature) {
		log.Error("invalid webhook signature")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var event paymentprovider.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to decode webhook event", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("webhook event received", slog.String("type", event.Type))

	switch event.Type {
	case paymentprovider.EventCustomerSubscriptionUpdated:
		err = h.service.ApplySubscriptionUpdate(r.Context(),
			event.Data.Object.Customer, event.Data.Object.ID, event.Data.Object.Status)
	case paymentprovider.EventCustomerSubscriptionDeleted:
		err = h.service.ApplySubscriptionUpdate(r.Context(),
			event.Data.Object.Customer, event.Data.Object.ID, "canceled")
	default:
		log.Info("ignoring event", slog.String("type", event.Type))
	}

	if err != nil {
		if errors.Is(err, billingservice.ErrCustomerNotFound) {
			log.Warn("customer not found, asking provider to retry",
				slog.String("customer_id", event.Data.Object.Customer))
		} else {
			log.Error("failed to apply subscription event", sl.Err(err))
		}
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process event"))
		return
	}

	render.JSON(w, r, map[string]any{"received": true})
}
