// Package status реализует HTTP-обработчик получения состояния подписки.
//
// Подписка, исчезнувшая у провайдера, трактуется как отменённая:
// локальное состояние приводится в соответствие, в ответе подписка null.
package status

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

// Service описывает интерфейс бизнес-логики получения состояния подписки.
type Service interface {
	Status(ctx context.Context, user *models.User) (*paymentprovider.Subscription, error)
}

// Handler отвечает за обработку запросов состояния подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Состояние подписки
// @Description Возвращает премиум-флаг и актуальные данные подписки от провайдера
// @Tags Billing
// @Produce  json
// @Success 200 {object} map[string]any "Состояние подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера или провайдера"
// @Router /billing/subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.status"

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

	sub, err := h.service.Status(r.Context(), user)
	if err != nil {
		if errors.Is(err, billingservice.ErrUpstream) {
			log.Error("provider call failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to fetch subscription from provider"))
			return
		}
		log.Error("failed to get subscription status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get subscription status"))
		return
	}

	log.Info("subscription status fetched", slog.String("uid", user.UID),
		slog.Bool("is_premium", user.IsPremium))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"is_premium":          user.IsPremium,
		"subscription_status": user.SubscriptionStatus,
		"subscription":        sub,
	}))
}
