package repository

import (
	"context"
	"fmt"

	"github.com/tdpk/hubpass/internal/models"
)

// CreateRedemption добавляет запись о погашении бенефита и возвращает её ID.
func (s *Storage) CreateRedemption(ctx context.Context, r models.Redemption) (int, error) {
	const op = "storage.CreateRedemption"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO redemptions (offer_code, partner_uid, member_uid, amount,
			      currency, method, status, note, redeemed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		r.OfferCode, r.PartnerUID, r.MemberUID, r.Amount, r.Currency,
		r.Method, r.Status, r.Note, r.RedeemedAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListRedemptions возвращает погашения партнёра с пагинацией.
func (s *Storage) ListRedemptions(ctx context.Context, partnerUID string, limit, offset int) ([]*models.Redemption, error) {
	const op = "storage.ListRedemptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, offer_code, partner_uid, member_uid, amount, currency,
			      method, status, note, redeemed_at
			  FROM redemptions
			  WHERE partner_uid = $1
			  ORDER BY redeemed_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, partnerUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Redemption
	for rows.Next() {
		r := &models.Redemption{}
		if err := rows.Scan(&r.ID, &r.OfferCode, &r.PartnerUID, &r.MemberUID,
			&r.Amount, &r.Currency, &r.Method, &r.Status, &r.Note, &r.RedeemedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
