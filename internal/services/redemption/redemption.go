// Package redemption журналирует погашения бенефитов по офферам партнёров.
// Погашение — отдельное от проверки событие: партнёр сначала проверяет
// членство, затем фиксирует выдачу бенефита.
package redemption

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tdpk/hubpass/internal/models"
)

// Repository определяет методы хранилища для журнала погашений.
type Repository interface {
	// CreateRedemption пишет запись о погашении и возвращает её ID.
	CreateRedemption(ctx context.Context, r models.Redemption) (int, error)
	// ListRedemptions возвращает погашения партнёра с пагинацией.
	ListRedemptions(ctx context.Context, partnerUID string, limit, offset int) ([]*models.Redemption, error)
}

// Service реализует журналирование погашений.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт новый Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Create фиксирует погашение бенефита и возвращает ID записи.
func (s *Service) Create(ctx context.Context, partnerUID string, req models.DummyRedemption) (int, error) {
	const op = "redemption.Create"

	r := models.Redemption{
		OfferCode:  req.OfferCode,
		PartnerUID: partnerUID,
		MemberUID:  req.MemberUID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Method:     models.MethodAPI,
		Status:     models.RedemptionCompleted,
		Note:       req.Note,
		RedeemedAt: time.Now().UTC(),
	}
	id, err := s.repo.CreateRedemption(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("redemption recorded",
		slog.Int("id", id),
		slog.String("offer_code", req.OfferCode),
		slog.String("partner_uid", partnerUID))
	return id, nil
}

// List возвращает погашения партнёра.
func (s *Service) List(ctx context.Context, partnerUID string, limit, offset int) ([]*models.Redemption, error) {
	return s.repo.ListRedemptions(ctx, partnerUID, limit, offset)
}
