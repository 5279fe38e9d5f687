package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tdpk/hubpass/internal/models"
)

// GetPlan возвращает запись каталога планов по коду.
func (s *Storage) GetPlan(ctx context.Context, code string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT code, name, amount, currency, billing_interval,
			      array_to_string(features, ',')
			  FROM plans
			  WHERE code = $1`
	p := &models.Plan{}
	var features string
	row := s.DB.QueryRowContext(ctx, query, code)
	if err := row.Scan(&p.Code, &p.Name, &p.Amount, &p.Currency, &p.Interval, &features); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if features != "" {
		p.Features = strings.Split(features, ",")
	}
	return p, nil
}

// ListPlans возвращает весь каталог планов.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT code, name, amount, currency, billing_interval,
			      array_to_string(features, ',')
			  FROM plans
			  ORDER BY amount`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var plans []*models.Plan
	for rows.Next() {
		p := &models.Plan{}
		var features string
		if err := rows.Scan(&p.Code, &p.Name, &p.Amount, &p.Currency, &p.Interval, &features); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if features != "" {
			p.Features = strings.Split(features, ",")
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}
