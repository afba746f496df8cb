package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/repository"
)

// pgExclusionViolation is raised by the bookings no-overlap exclusion
// constraint; it is the database-level backstop behind the advisory lock.
const pgExclusionViolation = "23P01"

const bookingColumns = `
	id, service_id, staff_id, client_id, service_name, price,
	start_time, end_time, status, notes, created_at, updated_at
`

type bookingTx struct {
	tx *sqlx.Tx
}

func (r *bookingRepository) WithTx(ctx context.Context, fn func(tx repository.BookingTx) error) error {
	return r.BaseRepository.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&bookingTx{tx: tx})
	})
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.StaffID != uuid.Nil {
		query += fmt.Sprintf(" AND staff_id = $%d", argCount)
		args = append(args, filters.StaffID)
		argCount++
	}
	if filters.ServiceID != uuid.Nil {
		query += fmt.Sprintf(" AND service_id = $%d", argCount)
		args = append(args, filters.ServiceID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}
	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	if limit := filters.Limit(); limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
		args = append(args, limit, filters.Offset())
	}

	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListForStaffRange(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Booking, error) {
	return listForStaffRange(ctx, r.db, staffID, from, to)
}

func (t *bookingTx) LockStaffDay(ctx context.Context, staffID uuid.UUID, date time.Time) error {
	// Transaction-scoped advisory lock; all writers for one staff/date
	// pair serialize here, released on commit or rollback.
	key := staffID.String() + "/" + date.Format(model.DateFormat)
	if _, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`,
		"booking_ledger", key); err != nil {
		return fmt.Errorf("failed to lock staff day: %w", err)
	}
	return nil
}

func (t *bookingTx) ListForStaffRange(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Booking, error) {
	return listForStaffRange(ctx, t.tx, staffID, from, to)
}

func (t *bookingTx) HasOverlap(ctx context.Context, staffID uuid.UUID, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE staff_id = $1
			AND status IN ('pending', 'confirmed')
			AND start_time < $3
			AND end_time > $2
		)
	`
	var hasOverlap bool
	if err := t.tx.GetContext(ctx, &hasOverlap, query, staffID, start, end); err != nil {
		return false, fmt.Errorf("failed to check overlap: %w", err)
	}
	return hasOverlap, nil
}

func (t *bookingTx) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := t.tx.ExecContext(ctx, query,
		booking.ID,
		booking.ServiceID,
		booking.StaffID,
		booking.ClientID,
		booking.ServiceName,
		booking.Price,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
		booking.Notes,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgExclusionViolation {
			return repository.ErrBookingOverlap
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (t *bookingTx) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (t *bookingTx) UpsertClient(ctx context.Context, client *model.Client) (*model.Client, error) {
	query := `
		INSERT INTO clients (id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			updated_at = EXCLUDED.updated_at
		RETURNING id, name, email, phone, created_at, updated_at
	`
	now := time.Now()

	var saved model.Client
	err := t.tx.GetContext(ctx, &saved, query,
		uuid.New(), client.Name, client.Email, client.Phone, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert client: %w", err)
	}
	return &saved, nil
}

func (t *bookingTx) CreateOutboxEvent(ctx context.Context, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, retry_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	event.ID = uuid.New()
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	_, err := t.tx.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.Payload,
		event.Status,
		event.RetryCount,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func listForStaffRange(ctx context.Context, q sqlx.QueryerContext, staffID uuid.UUID, from, to time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE staff_id = $1
		AND status IN ('pending', 'confirmed')
		AND start_time < $3
		AND end_time > $2
		ORDER BY start_time ASC
	`
	var bookings []*model.Booking
	if err := sqlx.SelectContext(ctx, q, &bookings, query, staffID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list bookings for staff: %w", err)
	}
	return bookings, nil
}
