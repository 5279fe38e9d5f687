// Package verify реализует HTTP-обработчик проверки членства.
//
// Handler принимает JSON-запрос с идентификатором (email или jti токена)
// и способом предъявления, извлекает uid партнёра из контекста, вызывает
// движок проверки и возвращает решение в JSON-формате.
//
// Решение возвращается партнёру даже при отказе: not_found, expired и
// suspended — это нормальные исходы проверки, а не ошибки сервера.
package verify

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
	"github.com/tdpk/hubpass/internal/models"
	"github.com/tdpk/hubpass/internal/services/verification"
)

// Handler управляет HTTP-запросами на проверку членства.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Движок принятия решения
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс движка проверки членства.
type Service interface {
	Verify(ctx context.Context, partnerUID, rawIdentifier string, method models.VerificationMethod) (*models.VerificationOutcome, error)
}

// Request — тело запроса на проверку.
type Request struct {
	Identifier string `json:"identifier" validate:"required"`
	Method     string `json:"method" validate:"required"`
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
// @Summary Проверить членство
// @Description Разрешает предъявленный идентификатор (email или QR-токен) в участника и возвращает решение о действительности членства.
// @Tags Verification
// @Accept  json
// @Produce  json
// @Param request body Request true "Идентификатор и способ предъявления"
// @Success 200 {object} map[string]any "Решение по проверке"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Партнёр не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при проверке"
// @Security BearerAuth
// @Router /verify [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.verification.verify"
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

	method := models.VerificationMethod(req.Method)
	if !method.Valid() {
		log.Error("unknown verification method", slog.String("method", req.Method))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("unknown verification method"))
		return
	}

	partnerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || partnerUID == "" {
		log.Error("partner uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	outcome, err := h.service.Verify(r.Context(), partnerUID, req.Identifier, method)
	if err != nil && !errors.Is(err, verification.ErrInvalidToken) {
		log.Error("verification failed", sl.Err(err))
	}
	if outcome == nil {
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not verify membership"))
		return
	}

	log.Info("verification completed", sl.Result(string(outcome.Result)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"verification": outcome,
	}))
}
