// Package issue реализует HTTP-обработчик выпуска QR-токена членства.
//
// Handler извлекает uid участника из контекста, вызывает сервис выпуска
// токенов и возвращает jti вместе со сроком действия. Тело запроса не
// требуется: токен всегда выпускается для текущей учётной записи.
package issue

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tdpk/hubpass/internal/http/middlewarectx"
	"github.com/tdpk/hubpass/internal/http/response"
	"github.com/tdpk/hubpass/internal/lib/sl"
	"github.com/tdpk/hubpass/internal/models"
)

// Handler управляет HTTP-запросами на выпуск QR-токенов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис выпуска токенов
}

// Service описывает интерфейс выпуска токенов.
type Service interface {
	Issue(ctx context.Context, memberUID string) (*models.QRToken, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выпустить QR-токен
// @Description Выпускает новый короткоживущий токен для текущего участника. Прежние токены остаются действительными до истечения или отзыва.
// @Tags Passes
// @Produce  json
// @Success 200 {object} map[string]any "Выпущенный токен"
// @Failure 401 {object} response.ErrorResponse "Участник не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при выпуске токена"
// @Security BearerAuth
// @Router /passes [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.pass.issue"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	memberUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || memberUID == "" {
		log.Error("member uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	token, err := h.service.Issue(r.Context(), memberUID)
	if err != nil {
		log.Error("failed to issue qr token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not issue token"))
		return
	}

	log.Info("qr token issued", slog.String("jti", token.JTI))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"jti":        token.JTI,
		"issued_at":  token.IssuedAt,
		"expires_at": token.ExpiresAt,
	}))
}
