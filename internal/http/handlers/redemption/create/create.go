// Package create реализует HTTP-обработчик журналирования погашения бенефита.
//
// Handler принимает JSON-запрос с данными погашения, валидирует их,
// извлекает uid партнёра из контекста, вызывает сервис погашений и
// возвращает ID созданной записи в JSON-формате.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/tdpk/hubpass/internal/http/middlewarectx"
	"github.com/tdpk/hubpass/internal/http/response"
	"github.com/tdpk/hubpass/internal/lib/sl"
	"github.com/tdpk/hubpass/internal/models"
)

// Handler управляет HTTP-запросами на журналирование погашений.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис журналирования погашений
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс журналирования погашения.
type Service interface {
	Create(ctx context.Context, partnerUID string, req models.DummyRedemption) (int, error)
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
// @Summary Зафиксировать погашение бенефита
// @Description Пишет журнальную запись о выдаче бенефита по офферу текущего партнёра. Возвращает ID созданной записи.
// @Tags Redemptions
// @Accept  json
// @Produce  json
// @Param request body models.DummyRedemption true "Данные погашения"
// @Success 200 {object} map[string]any "Погашение зафиксировано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Партнёр не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при записи погашения"
// @Security BearerAuth
// @Router /redemptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.redemption.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRedemption
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	partnerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || partnerUID == "" {
		log.Error("partner uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.Create(r.Context(), partnerUID, req)
	if err != nil {
		log.Error("failed to record redemption", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not record redemption"))
		return
	}

	log.Info("redemption recorded", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"redemption_id": id,
	}))
}
