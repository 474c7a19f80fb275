// Package cancel реализует HTTP-обработчик отмены премиум-подписки.
//
// Отмена сначала выполняется у провайдера и только потом зеркалируется
// локально: отклонённая провайдером отмена не меняет локальное состояние.
package cancel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/asset-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-tracker/internal/http/response"
	"github.com/magabrotheeeer/asset-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/asset-tracker/internal/models"
	"github.com/magabrotheeeer/asset-tracker/internal/paymentprovider"
	billingservice "github.com/magabrotheeeer/asset-tracker/internal/services/billing"
)

// Service описывает интерфейс бизнес-логики отмены подписки.
type Service interface {
	Cancel(ctx context.Context, user *models.User) (*paymentprovider.Subscription, error)
}

// Handler отвечает за обработку запросов на отмену подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Отменяет премиум-подписку текущего пользователя у провайдера и локально
// @Tags Billing
// @Produce  json
// @Success 200 {object} map[string]any "Отменённая подписка"
// @Failure 400 {object} response.ErrorResponse "Нет подписки или провайдер отклонил отмену"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /billing/subscription [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.cancel"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	sub, err := h.service.Cancel(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, billingservice.ErrNoSubscription):
			log.Warn("no subscription to cancel", slog.String("uid", user.UID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("no active subscription"))
		case errors.Is(err, billingservice.ErrUpstream):
			log.Error("provider rejected cancellation", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to cancel subscription with provider"))
		default:
			log.Error("failed to cancel subscription", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not cancel subscription"))
		}
		return
	}

	log.Info("subscription canceled", slog.String("uid", user.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"subscription": sub,
	}))
}
