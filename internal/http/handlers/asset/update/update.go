// Package update реализует HTTP-обработчик обновления актива по ID.
//
// Поля запроса со значением null оставляют текущее значение,
// присутствующие поля применяются даже если они пустые.
package update

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

// Service описывает интерфейс бизнес-логики обновления актива.
type Service interface {
	Update(ctx context.Context, id int, userUID string, req models.UpdateAsset) (*models.Asset, error)
}

// Handler отвечает за обработку запросов на обновление актива.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обновить актив по ID
// @Description Частично обновляет актив текущего пользователя по идентификатору
// @Tags Assets
// @Accept  json
// @Produce  json
// @Param id path int true "ID актива"
// @Param request body models.UpdateAsset true "Обновляемые поля актива"
// @Success 200 {object} map[string]any "Обновлённый актив"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Актив не найден"
// @Failure 409 {object} response.ErrorResponse "Серийный номер уже занят"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /assets/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.asset.update"

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

	var req models.UpdateAsset
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	asset, err := h.service.Update(r.Context(), id, user.UID, req)
	if err != nil {
		switch {
		case errors.Is(err, assetservice.ErrAssetNotFound):
			log.Warn("asset not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("asset not found"))
		case errors.Is(err, assetservice.ErrSerialNumberTaken):
			log.Warn("serial number conflict", slog.Int("id", id))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("serial number already exists"))
		default:
			log.Error("failed to update asset", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update asset"))
		}
		return
	}

	log.Info("updated asset", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"asset": asset,
	}))
}
