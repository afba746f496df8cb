package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/theminddepartment/booking-api/internal/model"
)

func (r *clientRepository) GetByEmail(ctx context.Context, email string) (*model.Client, error) {
	query := `
		SELECT id, name, email, phone, created_at, updated_at
		FROM clients
		WHERE email = $1
	`
	var client model.Client
	err := r.db.GetContext(ctx, &client, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

// ListWithStats aggregates over booking price snapshots, so the totals
// reflect what was actually charged, not the current service price.
func (r *clientRepository) ListWithStats(ctx context.Context) ([]*model.ClientStats, error) {
	query := `
		SELECT c.id, c.name, c.email, c.phone, c.created_at, c.updated_at,
			   COUNT(b.id) FILTER (WHERE b.status IN ('confirmed', 'completed')) AS total_bookings,
			   COALESCE(SUM(b.price) FILTER (WHERE b.status IN ('confirmed', 'completed')), 0) AS total_spent,
			   MAX(b.start_time) FILTER (WHERE b.status IN ('confirmed', 'completed')) AS last_booking
		FROM clients c
		LEFT JOIN bookings b ON b.client_id = c.id
		GROUP BY c.id, c.name, c.email, c.phone, c.created_at, c.updated_at
		ORDER BY c.name ASC
	`
	var stats []*model.ClientStats
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return stats, nil
}
