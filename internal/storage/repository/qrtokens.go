package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tdpk/hubpass/internal/models"
)

// CreateQRToken сохраняет выпущенный QR-токен.
func (s *Storage) CreateQRToken(ctx context.Context, token models.QRToken) error {
	const op = "storage.CreateQRToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO qr_tokens (jti, member_uid, issued_at, expires_at)
			  VALUES ($1, $2, $3, $4)`
	_, err := s.DB.ExecContext(ctx, query,
		token.JTI, token.MemberUID, token.IssuedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsQRTokenValid сообщает, действителен ли токен на момент вызова:
// строка существует, revoked = false и expires_at строго в будущем.
// Токен, истекающий ровно сейчас, недействителен.
func (s *Storage) IsQRTokenValid(ctx context.Context, jti string) (bool, error) {
	const op = "storage.IsQRTokenValid"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM qr_tokens
			      WHERE jti = $1 AND revoked = false AND expires_at > now()
			  )`
	var valid bool
	if err := s.DB.QueryRowContext(ctx, query, jti).Scan(&valid); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return valid, nil
}

// ResolveQRTokenMember возвращает владельца действительного токена.
// Для недействительного или неизвестного jti возвращается ErrNotFound:
// вызывающая сторона различает случаи через IsQRTokenValid.
func (s *Storage) ResolveQRTokenMember(ctx context.Context, jti string) (string, error) {
	const op = "storage.ResolveQRTokenMember"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT member_uid FROM qr_tokens
			  WHERE jti = $1 AND revoked = false AND expires_at > now()`
	var memberUID string
	if err := s.DB.QueryRowContext(ctx, query, jti).Scan(&memberUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return memberUID, nil
}

// RevokeQRToken выставляет revoked = true. Единственная мутация,
// допустимая для выпущенного токена; строка сохраняется для аудита.
func (s *Storage) RevokeQRToken(ctx context.Context, jti string) (int, error) {
	const op = "storage.RevokeQRToken"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE qr_tokens SET revoked = true WHERE jti = $1`
	result, err := s.DB.ExecContext(ctx, query, jti)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// GetQRToken возвращает строку токена по jti независимо от действительности.
func (s *Storage) GetQRToken(ctx context.Context, jti string) (*models.QRToken, error) {
	const op = "storage.GetQRToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT jti, member_uid, issued_at, expires_at, revoked
			  FROM qr_tokens
			  WHERE jti = $1`
	token := &models.QRToken{}
	row := s.DB.QueryRowContext(ctx, query, jti)
	if err := row.Scan(&token.JTI, &token.MemberUID, &token.IssuedAt,
		&token.ExpiresAt, &token.Revoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}
