// Package pass выпускает и отзывает QR-токены членства. Токен — это
// jti с коротким сроком жизни; QR-код на стороне клиента кодирует
// сам jti. Токены никогда не продлеваются: на каждую проверку
// выпускается новый.
package pass

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tdpk/hubpass/internal/models"
	"github.com/tdpk/hubpass/internal/storage/repository"
)

// Ошибки выпуска и отзыва токенов.
var (
	// ErrTokenNotFound — неизвестный jti.
	ErrTokenNotFound = errors.New("token not found")
	// ErrNotOwner — участник пытается отозвать чужой токен.
	ErrNotOwner = errors.New("token belongs to another member")
)

// Repository определяет методы хранилища, нужные выпуску токенов.
type Repository interface {
	// CreateQRToken сохраняет выпущенный токен.
	CreateQRToken(ctx context.Context, token models.QRToken) error
	// GetQRToken возвращает строку токена по jti.
	GetQRToken(ctx context.Context, jti string) (*models.QRToken, error)
	// RevokeQRToken выставляет revoked = true.
	RevokeQRToken(ctx context.Context, jti string) (int, error)
}

// Service реализует выпуск и отзыв QR-токенов.
type Service struct {
	repo Repository
	ttl  time.Duration
	log  *slog.Logger
}

// New создаёт новый Service с заданным сроком жизни токена.
func New(repo Repository, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		ttl:  ttl,
		log:  log,
	}
}

// Issue выпускает новый токен для участника и возвращает его.
func (s *Service) Issue(ctx context.Context, memberUID string) (*models.QRToken, error) {
	const op = "pass.Issue"

	now := time.Now().UTC()
	token := models.QRToken{
		JTI:       uuid.New().String(),
		MemberUID: memberUID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.CreateQRToken(ctx, token); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("qr token issued",
		slog.String("member_uid", memberUID),
		slog.Time("expires_at", token.ExpiresAt))
	return &token, nil
}

// Revoke отзывает токен. Отозвать можно только собственный токен;
// повторный отзыв уже отозванного токена не ошибка.
func (s *Service) Revoke(ctx context.Context, callerUID, jti string) error {
	const op = "pass.Revoke"

	token, err := s.repo.GetQRToken(ctx, jti)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if token.MemberUID != callerUID {
		return ErrNotOwner
	}

	if _, err := s.repo.RevokeQRToken(ctx, jti); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("qr token revoked", slog.String("jti", jti))
	return nil
}
