// Package billing выдаёт эфемерные redirect-URL биллинговой системы:
// checkout-сессию для оформления подписки и сессию портала для
// управления оплатой. Локальное состояние при этом только читается.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tdpk/hubpass/internal/models"
	"github.com/tdpk/hubpass/internal/storage/repository"
)

// Ошибки выдачи сессий.
var (
	// ErrPlanNotFound — неизвестный код тарифного плана.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrMemberNotFound — участник отсутствует в хранилище.
	ErrMemberNotFound = errors.New("member not found")
	// ErrNoCustomer — у участника нет привязки к клиенту биллинга.
	ErrNoCustomer = errors.New("no billing customer for member")
	// ErrForbidden — участник запросил сессию для чужой учётной записи.
	ErrForbidden = errors.New("identity does not match requested member")
)

// Repository определяет методы хранилища, нужные выдаче сессий.
type Repository interface {
	// GetPlan возвращает запись каталога планов.
	GetPlan(ctx context.Context, code string) (*models.Plan, error)
	// ListPlans возвращает весь каталог планов.
	ListPlans(ctx context.Context) ([]*models.Plan, error)
	// GetMember возвращает участника по UID.
	GetMember(ctx context.Context, memberUID string) (*models.Member, error)
	// GetSubscriptionByMemberUID возвращает подписку участника.
	GetSubscriptionByMemberUID(ctx context.Context, memberUID string) (*models.Subscription, error)
}

// Cache описывает методы кеширования каталога планов.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// BillingProvider — операции биллинговой системы, нужные выдаче сессий.
type BillingProvider interface {
	CreateCustomer(ctx context.Context, memberUID, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, customerID string, plan *models.Plan, memberUID, couponCode string) (string, error)
	CreatePortalSession(ctx context.Context, customerID string) (string, error)
}

// Service реализует выдачу checkout- и portal-сессий.
type Service struct {
	repo     Repository
	cache    Cache
	provider BillingProvider
	log      *slog.Logger
}

// New создаёт новый Service.
func New(repo Repository, cache Cache, provider BillingProvider, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		provider: provider,
		log:      log,
	}
}

// CreateCheckoutSession проверяет план и участника, переиспользует
// существующую привязку к клиенту биллинга либо создаёт нового клиента,
// и возвращает URL hosted checkout. Любое недостающее предусловие —
// ошибка без частично собранной сессии.
func (s *Service) CreateCheckoutSession(ctx context.Context, memberUID, planCode, couponCode string) (string, error) {
	const op = "billing.CreateCheckoutSession"

	plan, err := s.getPlan(ctx, planCode)
	if err != nil {
		return "", err
	}

	member, err := s.repo.GetMember(ctx, memberUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrMemberNotFound
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	customerID, err := s.customerIDFor(ctx, member)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	url, err := s.provider.CreateCheckoutSession(ctx, customerID, plan, memberUID, couponCode)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("checkout session created",
		slog.String("member_uid", memberUID),
		slog.String("plan_code", planCode))
	return url, nil
}

// CreatePortalSession возвращает URL hosted-портала биллинга. Личность
// вызывающего обязана совпадать с memberUID: участник никогда не получает
// портал чужой учётной записи, независимо от наличия подписки.
func (s *Service) CreatePortalSession(ctx context.Context, callerUID, memberUID string) (string, error) {
	const op = "billing.CreatePortalSession"

	if callerUID != memberUID {
		return "", ErrForbidden
	}

	sub, err := s.repo.GetSubscriptionByMemberUID(ctx, memberUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNoCustomer
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if sub.ProviderCustomerID == "" {
		return "", ErrNoCustomer
	}

	url, err := s.provider.CreatePortalSession(ctx, sub.ProviderCustomerID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("portal session created", slog.String("member_uid", memberUID))
	return url, nil
}

// ListPlans возвращает каталог планов для выбора перед оформлением.
// Каталог неизменяемый, поэтому кешируется целиком.
func (s *Service) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "billing.ListPlans"

	const cacheKey = "plans:catalog"
	var cached []*models.Plan
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plan catalog from cache", slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(cacheKey, plans, 12*time.Hour); err != nil {
		s.log.Warn("failed to cache plan catalog", slog.Any("err", err))
	}
	return plans, nil
}

// getPlan читает план из кеша либо из каталога; каталог неизменяемый,
// поэтому кешируется надолго.
func (s *Service) getPlan(ctx context.Context, planCode string) (*models.Plan, error) {
	const op = "billing.getPlan"

	cacheKey := "plan:" + planCode
	var cached models.Plan
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read plan from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	plan, err := s.repo.GetPlan(ctx, planCode)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(cacheKey, plan, 12*time.Hour); err != nil {
		s.log.Warn("failed to cache plan", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return plan, nil
}

// customerIDFor возвращает идентификатор клиента биллинга для участника:
// из существующей подписки, если она уже записала привязку, иначе
// создаётся новый клиент с email и именем участника.
func (s *Service) customerIDFor(ctx context.Context, member *models.Member) (string, error) {
	sub, err := s.repo.GetSubscriptionByMemberUID(ctx, member.UID)
	if err == nil && sub.ProviderCustomerID != "" {
		return sub.ProviderCustomerID, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	return s.provider.CreateCustomer(ctx, member.UID, member.Email, member.DisplayName())
}
