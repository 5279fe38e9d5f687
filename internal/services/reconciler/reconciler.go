// Package reconciler приводит локальное состояние подписок и участников
// в точное соответствие событиям жизненного цикла биллинговой системы.
// Вызывается обработчиком вебхука; идемпотентен при повторной доставке
// событий за счёт upsert-семантики по уникальным ключам.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tdpk/hubpass/internal/billingprovider"
	"github.com/tdpk/hubpass/internal/models"
)

// ErrMalformedEvent возвращается, когда событие не несёт обязательных
// полей. Некорректная checkout-сессия никогда не должна породить
// осиротевшую подписку: событие отклоняется целиком.
var ErrMalformedEvent = errors.New("malformed billing event")

// Repository определяет методы хранилища, нужные реконсилятору.
type Repository interface {
	// UpsertSubscription создаёт или перезаписывает подписку участника.
	UpsertSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// UpdateSubscriptionByProviderSubID зеркалирует событие в локальную строку.
	UpdateSubscriptionByProviderSubID(ctx context.Context, event models.SubscriptionEvent) (int, error)
	// CancelSubscriptionByProviderSubID переводит подписку в canceled.
	CancelSubscriptionByProviderSubID(ctx context.Context, providerSubID string, canceledAt time.Time) (int, error)
	// GetSubscriptionByProviderSubID находит подписку по идентификатору провайдера.
	GetSubscriptionByProviderSubID(ctx context.Context, providerSubID string) (*models.Subscription, error)
	// UpdateMemberStatus изменяет производный статус участника.
	UpdateMemberStatus(ctx context.Context, memberUID string, status models.MemberStatus) (int, error)
}

// BillingProvider запрашивает у биллинга объект подписки по идентификатору.
type BillingProvider interface {
	GetSubscription(ctx context.Context, providerSubID string) (*models.SubscriptionEvent, error)
}

// Service реализует реконсиляцию состояния подписок.
type Service struct {
	repo    Repository
	billing BillingProvider
	log     *slog.Logger
}

// New создаёт новый Service.
func New(repo Repository, billing BillingProvider, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		billing: billing,
		log:     log,
	}
}

// HandleCheckoutCompleted обрабатывает checkout.session.completed.
// Метаданные сессии обязаны нести member_uid и plan_code; при их
// отсутствии событие отклоняется без записи в хранилище. Статус, сумма
// и границы периода берутся из объекта подписки биллинга, затем статус
// участника переводится в active.
func (s *Service) HandleCheckoutCompleted(ctx context.Context, providerSubID, providerCustomerID string, metadata map[string]string) error {
	const op = "reconciler.HandleCheckoutCompleted"
	log := s.log.With(slog.String("op", op), slog.String("provider_sub_id", providerSubID))

	memberUID := metadata[billingprovider.MetaMemberUID]
	planCode := metadata[billingprovider.MetaPlanCode]
	if memberUID == "" || planCode == "" {
		log.Error("checkout session without member_uid or plan_code metadata")
		return fmt.Errorf("%s: %w", op, ErrMalformedEvent)
	}
	if providerSubID == "" {
		log.Error("checkout session without subscription id")
		return fmt.Errorf("%s: %w", op, ErrMalformedEvent)
	}

	event, err := s.billing.GetSubscription(ctx, providerSubID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if event.ProviderCustomerID == "" {
		event.ProviderCustomerID = providerCustomerID
	}

	sub := models.Subscription{
		MemberUID:          memberUID,
		Provider:           "stripe",
		ProviderCustomerID: event.ProviderCustomerID,
		ProviderSubID:      event.ProviderSubID,
		PlanCode:           planCode,
		Status:             event.Status,
		Amount:             event.Amount,
		Currency:           event.Currency,
		CurrentPeriodStart: event.CurrentPeriodStart,
		CurrentPeriodEnd:   event.CurrentPeriodEnd,
		CanceledAt:         event.CanceledAt,
	}
	if _, err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.repo.UpdateMemberStatus(ctx, memberUID, models.MemberStatusActive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("checkout completed, subscription mirrored",
		slog.String("member_uid", memberUID),
		slog.String("plan_code", planCode),
		slog.String("status", string(event.Status)))
	return nil
}

// HandleSubscriptionUpdated обрабатывает customer.subscription.updated.
// Поиск идёт по provider_sub_id. Отсутствие локальной строки — не ошибка:
// подписка могла быть создана вне этого сервиса, событие логируется
// и игнорируется.
func (s *Service) HandleSubscriptionUpdated(ctx context.Context, event models.SubscriptionEvent) error {
	const op = "reconciler.HandleSubscriptionUpdated"
	log := s.log.With(slog.String("op", op), slog.String("provider_sub_id", event.ProviderSubID))

	if event.ProviderSubID == "" {
		log.Error("subscription event without id")
		return fmt.Errorf("%s: %w", op, ErrMalformedEvent)
	}

	count, err := s.repo.UpdateSubscriptionByProviderSubID(ctx, event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		log.Info("unknown provider_sub_id, event ignored")
		return nil
	}

	sub, err := s.repo.GetSubscriptionByProviderSubID(ctx, event.ProviderSubID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	memberStatus := deriveMemberStatus(event.Status)
	if _, err := s.repo.UpdateMemberStatus(ctx, sub.MemberUID, memberStatus); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("subscription mirrored",
		slog.String("status", string(event.Status)),
		slog.String("member_status", string(memberStatus)))
	return nil
}

// HandleSubscriptionDeleted обрабатывает customer.subscription.deleted.
// Момент отмены фиксируется временем обработки: отсутствию отметки
// в событии источника не доверяем. Статус участника становится inactive.
func (s *Service) HandleSubscriptionDeleted(ctx context.Context, providerSubID string) error {
	const op = "reconciler.HandleSubscriptionDeleted"
	log := s.log.With(slog.String("op", op), slog.String("provider_sub_id", providerSubID))

	if providerSubID == "" {
		log.Error("subscription event without id")
		return fmt.Errorf("%s: %w", op, ErrMalformedEvent)
	}

	count, err := s.repo.CancelSubscriptionByProviderSubID(ctx, providerSubID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		log.Info("unknown provider_sub_id, event ignored")
		return nil
	}

	sub, err := s.repo.GetSubscriptionByProviderSubID(ctx, providerSubID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.UpdateMemberStatus(ctx, sub.MemberUID, models.MemberStatusInactive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("subscription canceled, member deactivated",
		slog.String("member_uid", sub.MemberUID))
	return nil
}

// deriveMemberStatus — производный статус участника от статуса подписки
// биллинга: active при active или trialing, иначе inactive.
func deriveMemberStatus(status models.SubscriptionStatus) models.MemberStatus {
	switch status {
	case models.SubStatusActive, models.SubStatusTrialing:
		return models.MemberStatusActive
	default:
		return models.MemberStatusInactive
	}
}
