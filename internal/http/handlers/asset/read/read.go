// Package read реализует HTTP-обработчик чтения одного актива по ID.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/asset-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-tracker/internal/http/response"
	"github.com/magabrotheeeer/asset-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/asset-tracker/internal/models"
	assetservice "github.com/magabrotheeeer/asset-tracker/internal/services/asset"
)

// Service описывает интерфейс бизнес-логики чтения актива.
type Service interface {
	Read(ctx context.Context, id int, userUID string) (*models.Asset, error)
}

// Handler отвечает за обработку запросов чтения актива.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить актив по ID
// @Description Возвращает актив текущего пользователя по идентификатору
// @Tags Assets
// @Produce  json
// @Param id path int true "ID актива"
// @Success 200 {object} map[string]any "Актив"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Актив не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /assets/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.asset.read"

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

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	asset, err := h.service.Read(r.Context(), id, user.UID)
	if err != nil {
		if errors.Is(err, assetservice.ErrAssetNotFound) {
			log.Warn("asset not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("asset not found"))
			return
		}
		log.Error("failed to read asset", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read asset"))
		return
	}

	log.Info("asset found", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"asset": asset,
	}))
}
