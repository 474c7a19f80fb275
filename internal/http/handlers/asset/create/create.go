// Package create реализует HTTP-обработчик добавления нового актива.
//
// Handler принимает JSON-запрос с данными актива, валидирует их,
// извлекает владельца из контекста запроса, применяет freemium-лимит
// через сервис и возвращает созданную запись в формате JSON.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/asset-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/asset-tracker/internal/http/response"
	"github.com/magabrotheeeer/asset-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/asset-tracker/internal/models"
	assetservice "github.com/magabrotheeeer/asset-tracker/internal/services/asset"
)

// Service описывает интерфейс бизнес-логики создания актива.
type Service interface {
	Create(ctx context.Context, user *models.User, req models.DummyAsset) (*models.Asset, error)
}

// Handler отвечает за обработку запросов на создание актива.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать актив
// @Description Добавляет новый актив текущего пользователя с учётом freemium-лимита
// @Tags Assets
// @Accept  json
// @Produce  json
// @Param request body models.DummyAsset true "Данные нового актива"
// @Success 201 {object} map[string]any "Созданный актив"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Достигнут лимит бесплатного тарифа"
// @Failure 409 {object} response.ErrorResponse "Серийный номер уже занят"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /assets [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.asset.create"

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

	var req models.DummyAsset
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	asset, err := h.service.Create(r.Context(), user, req)
	if err != nil {
		var quotaErr *assetservice.QuotaExceededError
		switch {
		case errors.As(err, &quotaErr):
			log.Warn("free asset limit reached", slog.Int("limit", quotaErr.Limit))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(quotaErr.Error()))
		case errors.Is(err, assetservice.ErrSerialNumberTaken):
			log.Warn("serial number conflict", slog.String("serial_number", req.SerialNumber))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("serial number already exists"))
		default:
			log.Error("failed to create asset", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create asset"))
		}
		return
	}

	log.Info("created new asset", slog.Int("id", asset.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"asset": asset,
	}))
}
