// Package checkout реализует HTTP-обработчик создания checkout-сессии.
//
// Handler принимает JSON-запрос с кодом тарифного плана и опциональным
// купоном, извлекает uid участника из контекста, вызывает биллинговый
// сервис и возвращает redirect-URL hosted checkout.
package checkout

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

// Handler управляет HTTP-запросами на создание checkout-сессий.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Биллинговый сервис
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс создания checkout-сессии.
type Service interface {
	CreateCheckoutSession(ctx context.Context, memberUID, planCode, couponCode string) (string, error)
}

// Request — тело запроса на оформление подписки.
type Request struct {
	MemberUID  string `json:"member_uid" validate:"required,uuid"`
	PlanCode   string `json:"plan_code" validate:"required"`
	CouponCode string `json:"coupon_code"`
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
// @Summary Создать checkout-сессию
// @Description Создает сессию оформления подписки для текущего участника и возвращает redirect-URL платёжной страницы.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Request true "UID участника, код плана и опциональный купон"
// @Success 200 {object} map[string]any "URL checkout-сессии"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Участник не авторизован"
// @Failure 403 {object} response.ErrorResponse "Запрошена чужая учётная запись"
// @Failure 404 {object} response.ErrorResponse "План или участник не найдены"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании сессии"
// @Security BearerAuth
// @Router /billing/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkout"
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
	// Оформить подписку можно только на собственную учётную запись
	if req.MemberUID != callerUID {
		log.Error("checkout requested for another member", slog.String("member_uid", req.MemberUID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	}

	url, err := h.service.CreateCheckoutSession(r.Context(), req.MemberUID, req.PlanCode, req.CouponCode)
	switch {
	case errors.Is(err, billing.ErrPlanNotFound):
		log.Error("plan not found", slog.String("plan_code", req.PlanCode))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	case errors.Is(err, billing.ErrMemberNotFound):
		log.Error("member not found", slog.String("member_uid", req.MemberUID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("member not found"))
		return
	case err != nil:
		log.Error("failed to create checkout session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout session"))
		return
	}

	log.Info("checkout session created", slog.String("plan_code", req.PlanCode))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"checkout_url": url,
	}))
}
