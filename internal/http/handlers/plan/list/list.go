// Package list реализует HTTP-обработчик получения каталога планов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/tdpk/hubpass/internal/http/response"
	"github.com/tdpk/hubpass/internal/lib/sl"
	"github.com/tdpk/hubpass/internal/models"
)

// Handler управляет запросами на чтение каталога планов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис каталога планов
}

// Service описывает интерфейс чтения каталога.
type Service interface {
	ListPlans(ctx context.Context) ([]*models.Plan, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить каталог планов
// @Description Возвращает все доступные тарифные планы для выбора перед оформлением подписки.
// @Tags Plans
// @Produce  json
// @Success 200 {object} map[string]any "Каталог планов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при чтении каталога"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list plans"))
		return
	}

	log.Info("plans listed", slog.Int("count", len(plans)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"plans": plans,
	}))
}
