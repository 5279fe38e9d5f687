// Package member регистрирует участников. Запись создаётся, когда
// учётная запись уже заведена во внешнем identity-провайдере: UID
// приходит готовым, статус всегда trial до первого события биллинга.
package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tdpk/hubpass/internal/models"
	"github.com/tdpk/hubpass/internal/storage/repository"
)

// Ошибки регистрации участников.
var (
	// ErrAlreadyExists — участник с таким email уже зарегистрирован.
	ErrAlreadyExists = errors.New("member already exists")
	// ErrInvalidTier — неизвестный уровень членства.
	ErrInvalidTier = errors.New("invalid membership tier")
)

// Repository определяет методы хранилища, нужные регистрации.
type Repository interface {
	// CreateMember сохраняет нового участника.
	CreateMember(ctx context.Context, member models.Member) error
	// GetMemberByEmail возвращает участника по email.
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)
}

// Service реализует регистрацию участников.
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

// Register создаёт участника со статусом trial. Email уникален:
// повторная регистрация того же адреса возвращает ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, req models.DummyMember) (*models.Member, error) {
	const op = "member.Register"

	tier := models.Tier(req.Tier)
	if !tier.Valid() {
		return nil, ErrInvalidTier
	}

	_, err := s.repo.GetMemberByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := models.Member{
		UID:         req.UID,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Status:      models.MemberStatusTrial,
		Tier:        tier,
		CountryCode: req.CountryCode,
	}
	if err := s.repo.CreateMember(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("member registered",
		slog.String("member_uid", m.UID),
		slog.String("tier", string(m.Tier)))
	return &m, nil
}
