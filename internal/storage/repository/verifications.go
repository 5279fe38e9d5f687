package repository

import (
	"context"
	"fmt"

	"github.com/tdpk/hubpass/internal/models"
)

// CreateVerification добавляет запись в журнал проверок и возвращает её ID.
// Журнал append-only: записи никогда не обновляются и не удаляются.
func (s *Storage) CreateVerification(ctx context.Context, v models.Verification) (int, error) {
	const op = "storage.CreateVerification"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO verifications (partner_uid, member_uid, method, result, verified_at)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		v.PartnerUID, v.MemberUID, v.Method, v.Result, v.VerifiedAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListVerifications возвращает журнал проверок партнёра с пагинацией,
// последние записи первыми.
func (s *Storage) ListVerifications(ctx context.Context, partnerUID string, limit, offset int) ([]*models.Verification, error) {
	const op = "storage.ListVerifications"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, partner_uid, member_uid, method, result, verified_at
			  FROM verifications
			  WHERE partner_uid = $1
			  ORDER BY verified_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, partnerUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Verification
	for rows.Next() {
		v := &models.Verification{}
		if err := rows.Scan(&v.ID, &v.PartnerUID, &v.MemberUID, &v.Method,
			&v.Result, &v.VerifiedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
