// Package portal реализует HTTP-обработчик создания сессии портала биллинга.
//
// Handler принимает JSON-запрос с uid участника, сверяет его с личностью
// вызывающего из контекста и возвращает redirect-URL hosted-портала.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/tdpk/hubpass/internal/http/middlewarectx"
	"github.com/tdpk/hubpass/internal/http/response"
	"github.com/tdpk/hubpass/internal/lib/sl"
	"github.com/tdpk/hubpass/internal/services/billing"
)

// Handler управляет HTTP-запросами на создание сессий портала.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Биллинговый сервис
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс создания сессии портала.
type Service interface {
	CreatePortalSession(ctx context.Context, callerUID, memberUID string) (string, error)
}

// Request — тело запроса на открытие портала.
type Request struct {
	MemberUID string `json:"member_uid" validate:"required,uuid"`
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
// @Summary Создать сессию портала биллинга
// @Description Возвращает redirect-URL портала управления оплатой. Участник может открыть портал только для собственной учётной записи.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Request true "UID участника"
// @Success 200 {object} map[string]any "URL портала"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Участник не авторизован"
// @Failure 403 {object} response.ErrorResponse "Запрошена чужая учётная запись"
// @Failure 404 {object} response.ErrorResponse "Привязка к биллингу не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании сессии"
// @Security BearerAuth
// @Router /billing/portal [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.portal"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	callerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || callerUID == "" {
		log.Error("member uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	url, err := h.service.CreatePortalSession(r.Context(), callerUID, req.MemberUID)
	switch {
	case errors.Is(err, billing.ErrForbidden):
		log.Error("portal requested for another member", slog.String("member_uid", req.MemberUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	case errors.Is(err, billing.ErrNoCustomer):
		log.Error("no billing customer for member", slog.String("member_uid", req.MemberUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no billing account for member"))
		return
	case err != nil:
		log.Error("failed to create portal session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create portal session"))
		return
	}

	log.Info("portal session created")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"portal_url": url,
	}))
}
