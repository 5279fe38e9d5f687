// Package revoke реализует HTTP-обработчик отзыва QR-токена.
//
// Handler извлекает jti из URL-параметров и uid участника из контекста,
// вызывает сервис отзыва и возвращает подтверждение. Отозвать можно
// только собственный токен.
package revoke

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tdpk/hubpass/internal/http/middlewarectx"
	"github.com/tdpk/hubpass/internal/http/response"
	"github.com/tdpk/hubpass/internal/lib/sl"
	"github.com/tdpk/hubpass/internal/services/pass"
)

// Handler управляет HTTP-запросами на отзыв QR-токенов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис отзыва токенов
}

// Service описывает интерфейс отзыва токенов.
type Service interface {
	Revoke(ctx context.Context, callerUID, jti string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отозвать QR-токен
// @Description Досрочно отзывает токен текущего участника по jti. Повторный отзыв уже отозванного токена не считается ошибкой.
// @Tags Passes
// @Produce  json
// @Param jti path string true "Идентификатор токена"
// @Success 200 {object} map[string]any "Токен отозван"
// @Failure 401 {object} response.ErrorResponse "Участник не авторизован"
// @Failure 403 {object} response.ErrorResponse "Токен принадлежит другому участнику"
// @Failure 404 {object} response.ErrorResponse "Токен не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при отзыве токена"
// @Security BearerAuth
// @Router /passes/{jti} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pass.revoke"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	jti := chi.URLParam(r, "jti")
	if jti == "" {
		log.Error("missing jti in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing token id"))
		return
	}

	callerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || callerUID == "" {
		log.Error("member uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	err := h.service.Revoke(r.Context(), callerUID, jti)
	switch {
	case errors.Is(err, pass.ErrTokenNotFound):
		log.Error("token not found", slog.String("jti", jti))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("token not found"))
		return
	case errors.Is(err, pass.ErrNotOwner):
		log.Error("token belongs to another member", slog.String("jti", jti))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("access denied"))
		return
	case err != nil:
		log.Error("failed to revoke qr token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not revoke token"))
		return
	}

	log.Info("qr token revoked", slog.String("jti", jti))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"revoked": true,
	}))
}
