// Package list реализует HTTP-обработчик списка активов текущего пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/asset-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-tracker/internal/http/response"
	"github.com/magabrotheeeer/asset-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/asset-tracker/internal/models"
)

// Service описывает интерфейс бизнес-логики списка активов.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.Asset, error)
}

// Handler отвечает за обработку запросов списка активов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список активов
// @Description Возвращает все активы текущего пользователя, новые первыми
// @Tags Assets
// @Produce  json
// @Success 200 {object} map[string]any "Список активов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /assets [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.asset.list"

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

	assets, err := h.service.List(r.Context(), user.UID)
	if err != nil {
		log.Error("failed to list assets", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list assets"))
		return
	}
	if assets == nil {
		assets = []*models.Asset{}
	}

	log.Info("listed assets", slog.Int("count", len(assets)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"assets": assets,
	}))
}
