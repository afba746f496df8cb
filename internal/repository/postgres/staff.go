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

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	staff.ID = uuid.New()
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO staff (id, name, email, phone, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.ExecContext(ctx, query,
			staff.ID,
			staff.Name,
			staff.Email,
			staff.Phone,
			staff.Active,
			staff.CreatedAt,
			staff.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create staff: %w", err)
		}
		return setStaffServices(ctx, tx, staff.ID, staff.ServiceIDs)
	})
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT id, name, email, phone, active, created_at, updated_at
		FROM staff
		WHERE id = $1
	`
	var staff model.Staff
	err := r.db.GetContext(ctx, &staff, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}

	if err := r.db.SelectContext(ctx, &staff.ServiceIDs,
		`SELECT service_id FROM staff_services WHERE staff_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get staff services: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	staff.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE staff
			SET name = $1, email = $2, phone = $3, active = $4, updated_at = $5
			WHERE id = $6
		`
		result, err := tx.ExecContext(ctx, query,
			staff.Name,
			staff.Email,
			staff.Phone,
			staff.Active,
			staff.UpdatedAt,
			staff.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update staff: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return sql.ErrNoRows
		}
		return setStaffServices(ctx, tx, staff.ID, staff.ServiceIDs)
	})
}

func (r *staffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
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

func (r *staffRepository) List(ctx context.Context, activeOnly bool) ([]*model.Staff, error) {
	query := `
		SELECT id, name, email, phone, active, created_at, updated_at
		FROM staff
	`
	if activeOnly {
		query += " WHERE active = true"
	}
	query += " ORDER BY name ASC"

	var staff []*model.Staff
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}

	for _, s := range staff {
		if err := r.db.SelectContext(ctx, &s.ServiceIDs,
			`SELECT service_id FROM staff_services WHERE staff_id = $1`, s.ID); err != nil {
			return nil, fmt.Errorf("failed to get staff services: %w", err)
		}
	}
	return staff, nil
}

func (r *staffRepository) SetServices(ctx context.Context, staffID uuid.UUID, serviceIDs []uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return setStaffServices(ctx, tx, staffID, serviceIDs)
	})
}

func setStaffServices(ctx context.Context, tx *sqlx.Tx, staffID uuid.UUID, serviceIDs []uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM staff_services WHERE staff_id = $1`, staffID); err != nil {
		return fmt.Errorf("failed to clear staff services: %w", err)
	}
	for _, serviceID := range serviceIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO staff_services (staff_id, service_id) VALUES ($1, $2)`,
			staffID, serviceID); err != nil {
			return fmt.Errorf("failed to assign service %s: %w", serviceID, err)
		}
	}
	return nil
}
