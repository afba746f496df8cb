package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/theminddepartment/booking-api/internal/model"
)

func (r *outboxRepository) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

func (r *outboxRepository) GetPendingEventsWithLock(ctx context.Context, tx *sqlx.Tx, limit int) ([]*model.OutboxEvent, error) {
	query := `
		SELECT id, event_type, payload, status, error_message, retry_count, retry_at,
			   processed_at, created_at, updated_at
		FROM outbox_events
		WHERE status = 'pending'
		AND (retry_at IS NULL OR retry_at <= NOW())
		ORDER BY created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT $1
	`
	var events []*model.OutboxEvent
	err := tx.SelectContext(ctx, &events, query, limit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error {
	query := `
		UPDATE outbox_events
		SET status = $2,
			error_message = $3,
			retry_at = $4,
			processed_at = CASE WHEN $2 = 'processed' THEN NOW() ELSE processed_at END,
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query, id, status, errorMessage, retryAt)
	if err != nil {
		return fmt.Errorf("failed to update outbox status: %w", err)
	}
	return nil
}

func (r *outboxRepository) IncrementRetryTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, retryAt time.Time, errorMessage string) error {
	query := `
		UPDATE outbox_events
		SET retry_count = retry_count + 1,
			retry_at = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := tx.ExecContext(ctx, query, id, retryAt, errorMessage)
	if err != nil {
		return fmt.Errorf("failed to increment retry: %w", err)
	}
	return nil
}

func (r *outboxRepository) MoveToDeadLetterTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error {
	// created_at keeps the event's original creation time; the move
	// time is recorded by the dead_lettered_at default.
	query := `
		INSERT INTO outbox_events_deadletter (event_id, event_type, payload, error_message, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, query,
		event.ID, event.EventType, event.Payload, event.ErrorMessage, event.RetryCount, event.CreatedAt); err != nil {
		return fmt.Errorf("failed to move event to dead letter: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM outbox_events WHERE id = $1`, event.ID); err != nil {
		return fmt.Errorf("failed to remove dead event: %w", err)
	}
	return nil
}

func (r *outboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM outbox_events WHERE status = 'processed' AND processed_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete processed events: %w", err)
	}
	return result.RowsAffected()
}
