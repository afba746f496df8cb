package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theminddepartment/booking-api/internal/model"
)

func (r *calendarRepository) GetBusinessHours(ctx context.Context, weekday int) (*model.BusinessHours, error) {
	query := `
		SELECT id, day_of_week, is_open, open_time, close_time, created_at, updated_at
		FROM business_hours
		WHERE day_of_week = $1
	`
	var entry model.BusinessHours
	err := r.db.GetContext(ctx, &entry, query, weekday)
	if errors.Is(err, sql.ErrNoRows) {
		// No row means closed, never an error.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business hours: %w", err)
	}
	return &entry, nil
}

func (r *calendarRepository) ListBusinessHours(ctx context.Context) ([]*model.BusinessHours, error) {
	query := `
		SELECT id, day_of_week, is_open, open_time, close_time, created_at, updated_at
		FROM business_hours
		ORDER BY day_of_week ASC
	`
	var entries []*model.BusinessHours
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list business hours: %w", err)
	}
	return entries, nil
}

func (r *calendarRepository) UpsertBusinessHours(ctx context.Context, entry *model.BusinessHours) error {
	query := `
		INSERT INTO business_hours (id, day_of_week, is_open, open_time, close_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (day_of_week) DO UPDATE
		SET is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.DayOfWeek,
		entry.IsOpen,
		entry.OpenTime,
		entry.CloseTime,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert business hours: %w", err)
	}
	return nil
}

func (r *calendarRepository) ListClosuresByDate(ctx context.Context, date time.Time) ([]*model.Closure, error) {
	query := `
		SELECT id, date, reason, all_day, start_time, end_time, created_at
		FROM closures
		WHERE date = $1
		ORDER BY all_day DESC, start_time ASC
	`
	var closures []*model.Closure
	if err := r.db.SelectContext(ctx, &closures, query, model.DateOnly(date)); err != nil {
		return nil, fmt.Errorf("failed to list closures: %w", err)
	}
	return closures, nil
}

func (r *calendarRepository) ListClosures(ctx context.Context, from, to time.Time) ([]*model.Closure, error) {
	query := `
		SELECT id, date, reason, all_day, start_time, end_time, created_at
		FROM closures
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC, start_time ASC
	`
	var closures []*model.Closure
	if err := r.db.SelectContext(ctx, &closures, query, model.DateOnly(from), model.DateOnly(to)); err != nil {
		return nil, fmt.Errorf("failed to list closures: %w", err)
	}
	return closures, nil
}

func (r *calendarRepository) CreateClosure(ctx context.Context, closure *model.Closure) error {
	query := `
		INSERT INTO closures (id, date, reason, all_day, start_time, end_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	closure.ID = uuid.New()
	closure.CreatedAt = time.Now()
	closure.Date = model.DateOnly(closure.Date)

	_, err := r.db.ExecContext(ctx, query,
		closure.ID,
		closure.Date,
		closure.Reason,
		closure.AllDay,
		closure.StartTime,
		closure.EndTime,
		closure.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create closure: %w", err)
	}
	return nil
}

func (r *calendarRepository) DeleteClosure(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM closures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete closure: %w", err)
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

func (r *calendarRepository) GetStaffSchedule(ctx context.Context, staffID uuid.UUID, weekday int) (*model.StaffSchedule, error) {
	query := `
		SELECT id, staff_id, day_of_week, is_working, start_time, end_time, created_at, updated_at
		FROM staff_schedules
		WHERE staff_id = $1 AND day_of_week = $2
	`
	var entry model.StaffSchedule
	err := r.db.GetContext(ctx, &entry, query, staffID, weekday)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff schedule: %w", err)
	}
	return &entry, nil
}

func (r *calendarRepository) ListStaffSchedules(ctx context.Context, staffID uuid.UUID) ([]*model.StaffSchedule, error) {
	query := `
		SELECT id, staff_id, day_of_week, is_working, start_time, end_time, created_at, updated_at
		FROM staff_schedules
		WHERE staff_id = $1
		ORDER BY day_of_week ASC
	`
	var entries []*model.StaffSchedule
	if err := r.db.SelectContext(ctx, &entries, query, staffID); err != nil {
		return nil, fmt.Errorf("failed to list staff schedules: %w", err)
	}
	return entries, nil
}

func (r *calendarRepository) UpsertStaffSchedule(ctx context.Context, entry *model.StaffSchedule) error {
	query := `
		INSERT INTO staff_schedules (id, staff_id, day_of_week, is_working, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (staff_id, day_of_week) DO UPDATE
		SET is_working = EXCLUDED.is_working,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.StaffID,
		entry.DayOfWeek,
		entry.IsWorking,
		entry.StartTime,
		entry.EndTime,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert staff schedule: %w", err)
	}
	return nil
}

func (r *calendarRepository) ListLeavesCovering(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*model.StaffLeave, error) {
	query := `
		SELECT id, staff_id, start_date, end_date, reason, created_at
		FROM staff_leaves
		WHERE staff_id = $1 AND start_date <= $2 AND end_date >= $2
	`
	var leaves []*model.StaffLeave
	if err := r.db.SelectContext(ctx, &leaves, query, staffID, model.DateOnly(date)); err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}
	return leaves, nil
}

func (r *calendarRepository) ListStaffLeaves(ctx context.Context, staffID uuid.UUID) ([]*model.StaffLeave, error) {
	query := `
		SELECT id, staff_id, start_date, end_date, reason, created_at
		FROM staff_leaves
		WHERE staff_id = $1
		ORDER BY start_date DESC
	`
	var leaves []*model.StaffLeave
	if err := r.db.SelectContext(ctx, &leaves, query, staffID); err != nil {
		return nil, fmt.Errorf("failed to list staff leaves: %w", err)
	}
	return leaves, nil
}

func (r *calendarRepository) CreateStaffLeave(ctx context.Context, leave *model.StaffLeave) error {
	query := `
		INSERT INTO staff_leaves (id, staff_id, start_date, end_date, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	leave.ID = uuid.New()
	leave.CreatedAt = time.Now()
	leave.StartDate = model.DateOnly(leave.StartDate)
	leave.EndDate = model.DateOnly(leave.EndDate)

	_, err := r.db.ExecContext(ctx, query,
		leave.ID,
		leave.StaffID,
		leave.StartDate,
		leave.EndDate,
		leave.Reason,
		leave.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff leave: %w", err)
	}
	return nil
}

func (r *calendarRepository) DeleteStaffLeave(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM staff_leaves WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff leave: %w", err)
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
