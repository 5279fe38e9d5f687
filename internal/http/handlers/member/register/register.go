// Package register реализует HTTP-обработчик регистрации участника.
//
// Handler принимает JSON-запрос с данными учётной записи, уже заведённой
// в identity-провайдере, валидирует их и создаёт локальную запись
// участника со статусом trial. Доступен только администраторам.
package register

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/tdpk/hubpass/internal/http/response"
	"github.com/tdpk/hubpass/internal/lib/sl"
	"github.com/tdpk/hubpass/internal/models"
	"github.com/tdpk/hubpass/internal/services/member"
)

// Handler управляет HTTP-запросами на регистрацию участников.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис регистрации участников
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс регистрации участника.
type Service interface {
	Register(ctx context.Context, req models.DummyMember) (*models.Member, error)
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
// @Summary Зарегистрировать участника
// @Description Создает запись участника для учётной записи identity-провайдера. Начальный статус trial.
// @Tags Members
// @Accept  json
// @Produce  json
// @Param request body models.DummyMember true "Данные участника"
// @Success 200 {object} map[string]any "Участник зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Email уже зарегистрирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при регистрации"
// @Security BearerAuth
// @Router /members [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.member.register"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyMember
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

	m, err := h.service.Register(r.Context(), req)
	switch {
	case errors.Is(err, member.ErrAlreadyExists):
		log.Error("email already registered", slog.String("email", req.Email))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error("member already exists"))
		return
	case errors.Is(err, member.ErrInvalidTier):
		log.Error("invalid membership tier", slog.String("tier", req.Tier))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("invalid membership tier"))
		return
	case err != nil:
		log.Error("failed to register member", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register member"))
		return
	}

	log.Info("member registered", slog.String("member_uid", m.UID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"member_uid": m.UID,
		"status":     m.Status,
	}))
}
