package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tdpk/hubpass/internal/models"
)

const subscriptionColumns = `id, member_uid, provider, provider_customer_id, provider_sub_id,
			      plan_code, status, amount, currency, current_period_start,
			      current_period_end, canceled_at, created_at, updated_at`

func scanSubscription(row interface{ Scan(...any) error }) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var periodStart, periodEnd, canceledAt sql.NullTime
	if err := row.Scan(&sub.ID, &sub.MemberUID, &sub.Provider, &sub.ProviderCustomerID,
		&sub.ProviderSubID, &sub.PlanCode, &sub.Status, &sub.Amount, &sub.Currency,
		&periodStart, &periodEnd, &canceledAt, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, err
	}
	if periodStart.Valid {
		sub.CurrentPeriodStart = periodStart.Time
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = periodEnd.Time
	}
	if canceledAt.Valid {
		sub.CanceledAt = &canceledAt.Time
	}
	return sub, nil
}

// GetSubscriptionByMemberUID возвращает подписку участника.
// Отсутствие подписки — штатная ситуация, возвращается ErrNotFound.
func (s *Storage) GetSubscriptionByMemberUID(ctx context.Context, memberUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByMemberUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE member_uid = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, memberUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// GetSubscriptionByProviderSubID возвращает подписку по идентификатору
// провайдера. Используется реконсилятором: участник теоретически может
// быть перепривязан, поэтому поиск идёт не по member_uid.
func (s *Storage) GetSubscriptionByProviderSubID(ctx context.Context, providerSubID string) (*models.Subscription, error) {
	const op = "storage.GetSubscriptionByProviderSubID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE provider_sub_id = $1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, providerSubID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// UpsertSubscription создаёт или полностью перезаписывает подписку
// участника (уникальность по member_uid). Повторная доставка того же
// события биллинга приводит к тому же конечному состоянию строки.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.UpsertSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (member_uid, provider, provider_customer_id,
			      provider_sub_id, plan_code, status, amount, currency,
			      current_period_start, current_period_end, canceled_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  ON CONFLICT (member_uid) DO UPDATE SET
			      provider = EXCLUDED.provider,
			      provider_customer_id = EXCLUDED.provider_customer_id,
			      provider_sub_id = EXCLUDED.provider_sub_id,
			      plan_code = EXCLUDED.plan_code,
			      status = EXCLUDED.status,
			      amount = EXCLUDED.amount,
			      currency = EXCLUDED.currency,
			      current_period_start = EXCLUDED.current_period_start,
			      current_period_end = EXCLUDED.current_period_end,
			      canceled_at = EXCLUDED.canceled_at,
			      updated_at = now()
			  RETURNING id`
	var id int
	err := s.DB.QueryRowContext(ctx, query,
		sub.MemberUID, sub.Provider, sub.ProviderCustomerID, sub.ProviderSubID,
		sub.PlanCode, sub.Status, sub.Amount, sub.Currency,
		nullTime(sub.CurrentPeriodStart), nullTime(sub.CurrentPeriodEnd),
		sub.CanceledAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpdateSubscriptionByProviderSubID зеркалирует статус и границы периода
// из события биллинга в локальную строку, найденную по provider_sub_id.
// Возвращает количество изменённых строк: 0 означает, что локальная
// запись об этой подписке отсутствует.
func (s *Storage) UpdateSubscriptionByProviderSubID(ctx context.Context, event models.SubscriptionEvent) (int, error) {
	const op = "storage.UpdateSubscriptionByProviderSubID"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1, amount = $2, currency = $3,
			      current_period_start = $4, current_period_end = $5,
			      canceled_at = $6, updated_at = now()
			  WHERE provider_sub_id = $7`
	result, err := s.DB.ExecContext(ctx, query,
		event.Status, event.Amount, event.Currency,
		nullTime(event.CurrentPeriodStart), nullTime(event.CurrentPeriodEnd),
		event.CanceledAt, event.ProviderSubID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CancelSubscriptionByProviderSubID переводит подписку в терминальный
// статус canceled, фиксируя момент отмены временем обработки события.
func (s *Storage) CancelSubscriptionByProviderSubID(ctx context.Context, providerSubID string, canceledAt time.Time) (int, error) {
	const op = "storage.CancelSubscriptionByProviderSubID"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1, canceled_at = $2, updated_at = now()
			  WHERE provider_sub_id = $3`
	result, err := s.DB.ExecContext(ctx, query, models.SubStatusCanceled, canceledAt, providerSubID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
