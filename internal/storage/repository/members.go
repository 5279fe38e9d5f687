package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tdpk/hubpass/internal/models"
)

// CreateMember сохраняет нового участника. Вызывается при регистрации:
// статус trial, уровень Member.
func (s *Storage) CreateMember(ctx context.Context, member models.Member) error {
	const op = "storage.CreateMember"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO members (uid, email, first_name, last_name, status, tier, country_code)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.DB.ExecContext(ctx, query,
		member.UID, member.Email, member.FirstName, member.LastName,
		member.Status, member.Tier, member.CountryCode)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetMember возвращает участника по его UID.
func (s *Storage) GetMember(ctx context.Context, memberUID string) (*models.Member, error) {
	const op = "storage.GetMember"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, first_name, last_name, status, tier, country_code,
			      created_at, updated_at
			  FROM members
			  WHERE uid = $1`
	m := &models.Member{}
	row := s.DB.QueryRowContext(ctx, query, memberUID)
	if err := row.Scan(&m.UID, &m.Email, &m.FirstName, &m.LastName, &m.Status,
		&m.Tier, &m.CountryCode, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// GetMemberByEmail возвращает участника по адресу электронной почты.
func (s *Storage) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	const op = "storage.GetMemberByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, first_name, last_name, status, tier, country_code,
			      created_at, updated_at
			  FROM members
			  WHERE email = $1`
	m := &models.Member{}
	row := s.DB.QueryRowContext(ctx, query, email)
	if err := row.Scan(&m.UID, &m.Email, &m.FirstName, &m.LastName, &m.Status,
		&m.Tier, &m.CountryCode, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// UpdateMemberStatus изменяет статус участника и возвращает количество
// изменённых строк. Используется только реконсилятором.
func (s *Storage) UpdateMemberStatus(ctx context.Context, memberUID string, status models.MemberStatus) (int, error) {
	const op = "storage.UpdateMemberStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE members SET status = $1, updated_at = now() WHERE uid = $2`
	result, err := s.DB.ExecContext(ctx, query, status, memberUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
