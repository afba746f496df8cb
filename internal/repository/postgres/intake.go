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

const intakeColumns = `
	id, full_name, email, phone, emergency_contact_name, emergency_contact_phone,
	experience_level, goals, preferences, consent_booking, consent_marketing,
	consent_privacy, disclaimer_version, completed, completed_at, expires_at,
	expired, created_at, updated_at
`

func (r *intakeRepository) CreateProfile(ctx context.Context, profile *model.IntakeProfile) error {
	query := `
		INSERT INTO intake_profiles (` + intakeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Email,
		profile.Phone,
		profile.EmergencyContactName,
		profile.EmergencyContactPhone,
		profile.ExperienceLevel,
		profile.Goals,
		profile.Preferences,
		profile.ConsentBooking,
		profile.ConsentMarketing,
		profile.ConsentPrivacy,
		profile.DisclaimerVersion,
		profile.Completed,
		profile.CompletedAt,
		profile.ExpiresAt,
		profile.Expired,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create intake profile: %w", err)
	}
	return nil
}

// UpdateProfile rewrites a profile in place, keyed by id. Used when an
// email re-submits intake after its previous profile expired.
func (r *intakeRepository) UpdateProfile(ctx context.Context, profile *model.IntakeProfile) error {
	query := `
		UPDATE intake_profiles SET
			full_name = $2, phone = $3, emergency_contact_name = $4,
			emergency_contact_phone = $5, experience_level = $6, goals = $7,
			preferences = $8, consent_booking = $9, consent_marketing = $10,
			consent_privacy = $11, disclaimer_version = $12, completed = $13,
			completed_at = $14, expires_at = $15, expired = $16, updated_at = $17
		WHERE id = $1
	`
	profile.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.FullName,
		profile.Phone,
		profile.EmergencyContactName,
		profile.EmergencyContactPhone,
		profile.ExperienceLevel,
		profile.Goals,
		profile.Preferences,
		profile.ConsentBooking,
		profile.ConsentMarketing,
		profile.ConsentPrivacy,
		profile.DisclaimerVersion,
		profile.Completed,
		profile.CompletedAt,
		profile.ExpiresAt,
		profile.Expired,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update intake profile: %w", err)
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

func (r *intakeRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.IntakeProfile, error) {
	query := `SELECT ` + intakeColumns + ` FROM intake_profiles WHERE id = $1`

	var profile model.IntakeProfile
	err := r.db.GetContext(ctx, &profile, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intake profile: %w", err)
	}
	return &profile, nil
}

func (r *intakeRepository) GetProfileByEmail(ctx context.Context, email string) (*model.IntakeProfile, error) {
	query := `SELECT ` + intakeColumns + ` FROM intake_profiles WHERE email = $1`

	var profile model.IntakeProfile
	err := r.db.GetContext(ctx, &profile, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		// Absence is a normal answer for the status endpoint.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get intake profile: %w", err)
	}
	return &profile, nil
}

func (r *intakeRepository) ListProfiles(ctx context.Context) ([]*model.IntakeProfile, error) {
	query := `SELECT ` + intakeColumns + ` FROM intake_profiles ORDER BY created_at DESC`

	var profiles []*model.IntakeProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("failed to list intake profiles: %w", err)
	}
	return profiles, nil
}

// ExpireAll is a single idempotent update across every profile.
func (r *intakeRepository) ExpireAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE intake_profiles SET expired = true, updated_at = $1 WHERE expired = false`,
		time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire profiles: %w", err)
	}
	return result.RowsAffected()
}

func (r *intakeRepository) ExpireOne(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE intake_profiles SET expired = true, updated_at = $1 WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to expire profile: %w", err)
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

func (r *intakeRepository) GetActiveDisclaimer(ctx context.Context) (*model.Disclaimer, error) {
	query := `
		SELECT id, version, content, active, created_at
		FROM disclaimers
		WHERE active = true
		ORDER BY created_at DESC
		LIMIT 1
	`
	var disclaimer model.Disclaimer
	err := r.db.GetContext(ctx, &disclaimer, query)
	if errors.Is(err, sql.ErrNoRows) {
		// No version published yet. Callers treat nil as "not published".
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active disclaimer: %w", err)
	}
	return &disclaimer, nil
}

// CreateDisclaimer activates the new version and deactivates every other
// one in a single transaction.
func (r *intakeRepository) CreateDisclaimer(ctx context.Context, disclaimer *model.Disclaimer) error {
	disclaimer.ID = uuid.New()
	disclaimer.Active = true
	disclaimer.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE disclaimers SET active = false WHERE active = true`); err != nil {
			return fmt.Errorf("failed to deactivate disclaimers: %w", err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO disclaimers (id, version, content, active, created_at) VALUES ($1, $2, $3, $4, $5)`,
			disclaimer.ID, disclaimer.Version, disclaimer.Content, disclaimer.Active, disclaimer.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create disclaimer: %w", err)
		}
		return nil
	})
}
