// Package registration реализует HTTP-обработчик вебхука завершения оплаты.
//
// Провайдер доставляет события как минимум однажды: повторное событие
// checkout.session.completed — не ошибка, обработчик идемпотентен.
// Подпись проверяется над сырым телом запроса до любого парсинга.
package registration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/asset-tracker/internal/http/response"
	"github.com/magabrotheeeer/asset-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/asset-tracker/internal/paymentprovider"
)

// SignatureHeader — заголовок с HMAC-подписью тела вебхука.
const SignatureHeader = "X-Api-Signature"

// Service описывает интерфейс бизнес-логики завершения checkout.
type Service interface {
	CompleteCheckout(ctx context.Context, pendingID, customerID, subscriptionID string) error
}

// Handler отвечает за обработку вебхука регистрации.
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
// @Summary Вебхук завершения оплаты
// @Description Принимает событие checkout.session.completed и создаёт премиум-пользователя
// @Tags Webhooks
// @Accept  json
// @Produce  json
// @Param X-Api-Signature header string true "HMAC-SHA256 подпись тела запроса"
// @Success 200 {object} map[string]any "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или некорректное тело"
// @Failure 500 {object} response.ErrorResponse "Временная ошибка, провайдер должен повторить"
// @Router /webhooks/registration [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.webhook.registration"

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

	if event.Type == paymentprovider.EventCheckoutSessionCompleted {
		pendingID := event.Data.Object.Metadata["pending_signup_id"]
		err := h.service.CompleteCheckout(r.Context(), pendingID,
			event.Data.Object.Customer, event.Data.Object.Subscription)
		if err != nil {
			log.Error("failed to complete checkout", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to process event"))
			return
		}
	}

	render.JSON(w, r, map[string]any{"received": true})
}
