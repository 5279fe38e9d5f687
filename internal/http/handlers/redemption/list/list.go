// Package list реализует HTTP-обработчик получения журнала погашений партнёра.
//
// Handler читает параметры пагинации из query-строки, извлекает uid
// партнёра из контекста и возвращает список записей в JSON-формате.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tdpk/hubpass/internal/http/middlewarectx"
	"github.com/tdpk/hubpass/internal/http/response"
	"github.com/tdpk/hubpass/internal/lib/sl"
	"github.com/tdpk/hubpass/internal/models"
)

// Handler управляет HTTP-запросами на чтение журнала погашений.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис журналирования погашений
}

// Service описывает интерфейс чтения журнала погашений.
type Service interface {
	List(ctx context.Context, partnerUID string, limit, offset int) ([]*models.Redemption, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить журнал погашений
// @Description Возвращает погашения текущего партнёра с пагинацией через параметры limit и offset.
// @Tags Redemptions
// @Produce  json
// @Param limit query int false "Максимум записей (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} map[string]any "Список погашений"
// @Failure 401 {object} response.ErrorResponse "Партнёр не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении журнала"
// @Security BearerAuth
// @Router /redemptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.redemption.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	partnerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || partnerUID == "" {
		log.Error("partner uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	items, err := h.service.List(r.Context(), partnerUID, limit, offset)
	if err != nil {
		log.Error("failed to list redemptions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list redemptions"))
		return
	}

	log.Info("redemptions listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"redemptions": items,
	}))
}
