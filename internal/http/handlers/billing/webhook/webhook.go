// Package webhook реализует HTTP-обработчик вебхуков биллинговой системы.
//
// Handler читает сырое тело запроса, проверяет подпись из заголовка
// Stripe-Signature и передаёт нормализованное событие реконсилятору.
// Неизвестные типы событий подтверждаются без обработки: провайдер
// не должен повторять доставку того, что нам не нужно.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/stripe/stripe-go/v82"

	"github.com/tdpk/hubpass/internal/billingprovider"
	"github.com/tdpk/hubpass/internal/http/response"
	"github.com/tdpk/hubpass/internal/lib/sl"
	"github.com/tdpk/hubpass/internal/models"
	"github.com/tdpk/hubpass/internal/services/reconciler"
)

// Обрабатываемые типы событий.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// Service описывает интерфейс реконсилятора состояния подписок.
type Service interface {
	HandleCheckoutCompleted(ctx context.Context, providerSubID, providerCustomerID string, metadata map[string]string) error
	HandleSubscriptionUpdated(ctx context.Context, event models.SubscriptionEvent) error
	HandleSubscriptionDeleted(ctx context.Context, providerSubID string) error
}

// Verifier проверяет подпись вебхука и разбирает событие.
type Verifier interface {
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// Handler управляет HTTP-запросами вебхуков биллинга.
type Handler struct {
	log      *slog.Logger // Логгер для записи информации и ошибок
	service  Service      // Реконсилятор состояния подписок
	verifier Verifier     // Проверка подписи события
}

// New создает новый Handler с переданными логгером, сервисом и верификатором.
func New(log *slog.Logger, service Service, verifier Verifier) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		verifier: verifier,
	}
}

// ServeHTTP godoc
// @Summary Принять вебхук биллинга
// @Description Проверяет подпись события и приводит локальное состояние подписок в соответствие жизненному циклу биллинга. Неизвестные события подтверждаются без обработки.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]any "Событие принято"
// @Failure 400 {object} response.ErrorResponse "Неверная подпись или некорректное событие"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки события"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	defer r.Body.Close()

	event, err := h.verifier.ConstructEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		log.Error("webhook signature verification failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}
	log = log.With(slog.String("event_type", string(event.Type)), slog.String("event_id", event.ID))

	switch string(event.Type) {
	case EventCheckoutCompleted:
		err = h.handleCheckoutCompleted(r.Context(), event, log)
	case EventSubscriptionUpdated:
		err = h.handleSubscriptionUpdated(r.Context(), event)
	case EventSubscriptionDeleted:
		err = h.handleSubscriptionDeleted(r.Context(), event)
	default:
		log.Info("ignored webhook event")
		render.JSON(w, r, map[string]any{"received": true})
		return
	}

	if err != nil {
		if errors.Is(err, reconciler.ErrMalformedEvent) {
			log.Error("malformed webhook event", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("malformed event"))
			return
		}
		log.Error("failed to process webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process event"))
		return
	}

	log.Info("webhook processed successfully")
	// Подтверждение для провайдера без обёртки Response: биллинг
	// ждёт голый объект
	render.JSON(w, r, map[string]any{"received": true})
}

// handleCheckoutCompleted извлекает из checkout-сессии идентификаторы
// подписки и клиента вместе с метаданными и отдаёт их реконсилятору.
func (h *Handler) handleCheckoutCompleted(ctx context.Context, event stripe.Event, log *slog.Logger) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Error("failed to unmarshal checkout session", sl.Err(err))
		return reconciler.ErrMalformedEvent
	}
	if session.Subscription == nil || session.Customer == nil {
		return reconciler.ErrMalformedEvent
	}

	metadata := session.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return h.service.HandleCheckoutCompleted(ctx, session.Subscription.ID, session.Customer.ID, metadata)
}

func (h *Handler) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return reconciler.ErrMalformedEvent
	}
	return h.service.HandleSubscriptionUpdated(ctx, billingprovider.SubscriptionEventFromStripe(&sub))
}

func (h *Handler) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return reconciler.ErrMalformedEvent
	}
	return h.service.HandleSubscriptionDeleted(ctx, sub.ID)
}
