// Package verification содержит движок принятия решения при проверке
// членства: разрешение предъявленного идентификатора в участника,
// чтение текущего состояния подписки и журналирование итога.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tdpk/hubpass/internal/identityprovider"
	"github.com/tdpk/hubpass/internal/lib/identifier"
	"github.com/tdpk/hubpass/internal/lib/sl"
	"github.com/tdpk/hubpass/internal/models"
	"github.com/tdpk/hubpass/internal/storage/repository"
)

// ErrInvalidToken возвращается для отозванного или истёкшего QR-токена.
// В журнал такой исход пишется как expired, но вызывающей стороне
// нужно отдельное сообщение: оператор повторяет скан, а не эскалирует.
var ErrInvalidToken = errors.New("invalid or expired token")

// Repository определяет методы хранилища, нужные движку проверки.
type Repository interface {
	// IsQRTokenValid сообщает, действителен ли токен на момент вызова.
	IsQRTokenValid(ctx context.Context, jti string) (bool, error)
	// ResolveQRTokenMember возвращает владельца действительного токена.
	ResolveQRTokenMember(ctx context.Context, jti string) (string, error)
	// GetMember возвращает участника по UID.
	GetMember(ctx context.Context, memberUID string) (*models.Member, error)
	// GetSubscriptionByMemberUID возвращает подписку участника.
	GetSubscriptionByMemberUID(ctx context.Context, memberUID string) (*models.Subscription, error)
	// CreateVerification пишет запись в журнал проверок.
	CreateVerification(ctx context.Context, v models.Verification) (int, error)
}

// IdentityProvider разрешает email в учётную запись внешнего сервиса.
type IdentityProvider interface {
	GetIdentityByEmail(ctx context.Context, email string) (*identityprovider.Identity, error)
}

// Service реализует движок принятия решения.
type Service struct {
	repo Repository
	idp  IdentityProvider
	log  *slog.Logger
}

// New создаёт новый Service.
func New(repo Repository, idp IdentityProvider, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		idp:  idp,
		log:  log,
	}
}

// Verify разрешает предъявленный идентификатор (email или jti) в участника,
// читает текущее состояние подписки и возвращает решение. Каждое принятое
// решение пишется в журнал проверок; ошибка записи журнала логируется и
// не влияет на возвращаемое решение. Сбой хранилища или identity-провайдера
// возвращается как ошибка без решения и без журнальной записи.
//
// Полная таблица отображения в result:
//   - участник не разрешён            → not_found
//   - member.status == suspended      → suspended (перекрывает подписку)
//   - подписка есть и status == active → active
//   - всё остальное                   → expired
func (s *Service) Verify(ctx context.Context, partnerUID, rawIdentifier string, method models.VerificationMethod) (*models.VerificationOutcome, error) {
	const op = "verification.Verify"
	log := s.log.With(slog.String("op", op), slog.String("partner_uid", partnerUID))

	memberUID, outcome, err := s.resolveMember(ctx, rawIdentifier, log)
	if outcome != nil {
		// Разрешение дало готовое решение об отказе: журналируем и отдаём партнёру
		s.audit(ctx, partnerUID, memberUID, method, outcome.Result, log)
		return outcome, err
	}
	if err != nil {
		// Сбой хранилища или identity-провайдера — решения нет.
		// Такой исход не журналируется: отказ инфраструктуры нельзя
		// выдавать партнёру за not_found
		return nil, err
	}

	member, err := s.repo.GetMember(ctx, *memberUID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		// Учётная запись есть, а строки участника нет: не должно случаться,
		// но обрабатывается как not_found
		log.Error("member row missing for resolved identity", sl.Err(err))
		outcome = &models.VerificationOutcome{
			Result:             models.ResultNotFound,
			Reason:             "member not found",
			SubscriptionStatus: "none",
		}
		s.audit(ctx, partnerUID, nil, method, models.ResultNotFound, log)
		return outcome, nil
	}

	outcome = s.decide(ctx, member, log)
	s.audit(ctx, partnerUID, &member.UID, method, outcome.Result, log)
	log.Info("verification completed", sl.Result(string(outcome.Result)))
	return outcome, nil
}

// resolveMember классифицирует идентификатор и разрешает его в UID участника.
// Ненулевой outcome означает, что разрешение не удалось и решение готово.
func (s *Service) resolveMember(ctx context.Context, rawIdentifier string, log *slog.Logger) (*string, *models.VerificationOutcome, error) {
	ident := identifier.Classify(rawIdentifier)

	switch ident.Kind {
	case identifier.KindEmail:
		identity, err := s.idp.GetIdentityByEmail(ctx, ident.Value)
		if err != nil {
			if errors.Is(err, identityprovider.ErrNotFound) {
				log.Info("identity not found for email lookup")
				return nil, &models.VerificationOutcome{
					Result:             models.ResultNotFound,
					Reason:             "member not found",
					SubscriptionStatus: "none",
				}, nil
			}
			log.Error("identity provider lookup failed", sl.Err(err))
			return nil, nil, fmt.Errorf("verification.resolveMember: %w", err)
		}
		return &identity.UID, nil, nil

	default: // identifier.KindToken
		valid, err := s.repo.IsQRTokenValid(ctx, ident.Value)
		if err != nil {
			return nil, nil, fmt.Errorf("verification.resolveMember: %w", err)
		}
		if !valid {
			log.Info("qr token invalid, revoked or expired")
			// В журнале невалидный токен сворачивается в expired
			return nil, &models.VerificationOutcome{
				Result:             models.ResultExpired,
				Reason:             "invalid or expired token",
				SubscriptionStatus: "none",
			}, ErrInvalidToken
		}
		memberUID, err := s.repo.ResolveQRTokenMember(ctx, ident.Value)
		if err != nil {
			// Токен валиден, а владелец не разрешился: защитная ветка
			log.Error("valid token without resolvable member", sl.Err(err))
			return nil, &models.VerificationOutcome{
				Result:             models.ResultNotFound,
				Reason:             "member not found",
				SubscriptionStatus: "none",
			}, nil
		}
		return &memberUID, nil, nil
	}
}

// decide применяет таблицу отображения {member.status, subscription.status}
// к четырёхзначному result.
func (s *Service) decide(ctx context.Context, member *models.Member, log *slog.Logger) *models.VerificationOutcome {
	outcome := &models.VerificationOutcome{
		MemberName:         member.DisplayName(),
		Tier:               member.Tier,
		MemberStatus:       member.Status,
		SubscriptionStatus: "none",
	}

	sub, err := s.repo.GetSubscriptionByMemberUID(ctx, member.UID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		// Сбой чтения подписки трактуем как её отсутствие: fail closed
		log.Error("failed to read subscription", sl.Err(err))
	}
	if sub != nil {
		outcome.SubscriptionStatus = string(sub.Status)
		if !sub.CurrentPeriodEnd.IsZero() {
			end := sub.CurrentPeriodEnd
			outcome.SubscriptionEnd = &end
		}
	}

	// Приостановка участника перекрывает любое состояние подписки
	if member.Status == models.MemberStatusSuspended {
		outcome.Result = models.ResultSuspended
		outcome.Reason = "membership suspended"
		return outcome
	}
	if sub != nil && sub.Status == models.SubStatusActive {
		outcome.Result = models.ResultActive
		return outcome
	}
	outcome.Result = models.ResultExpired
	outcome.Reason = "no active subscription"
	return outcome
}

// audit пишет журнальную запись проверки. Ошибка записи логируется
// и никогда не меняет уже принятое решение.
func (s *Service) audit(ctx context.Context, partnerUID string, memberUID *string, method models.VerificationMethod, result models.VerificationResult, log *slog.Logger) {
	_, err := s.repo.CreateVerification(ctx, models.Verification{
		PartnerUID: partnerUID,
		MemberUID:  memberUID,
		Method:     method,
		Result:     result,
		VerifiedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error("failed to write verification audit record", sl.Err(err))
	}
}
