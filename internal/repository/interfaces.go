package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/theminddepartment/booking-api/internal/model"
)

// ErrBookingOverlap is returned when the ledger's no-overlap exclusion
// constraint rejects an insert.
var ErrBookingOverlap = errors.New("booking overlaps an existing booking")

// All repository interfaces in one file. Lookups for optional
// configuration rows (business hours, staff schedules) return (nil, nil)
// when no row exists; callers treat absence as closed.
type (
	// CalendarRepository is the Calendar Rules Store plus per-staff
	// schedules and leave.
	CalendarRepository interface {
		GetBusinessHours(ctx context.Context, weekday int) (*model.BusinessHours, error)
		ListBusinessHours(ctx context.Context) ([]*model.BusinessHours, error)
		UpsertBusinessHours(ctx context.Context, entry *model.BusinessHours) error

		ListClosuresByDate(ctx context.Context, date time.Time) ([]*model.Closure, error)
		ListClosures(ctx context.Context, from, to time.Time) ([]*model.Closure, error)
		CreateClosure(ctx context.Context, closure *model.Closure) error
		DeleteClosure(ctx context.Context, id uuid.UUID) error

		GetStaffSchedule(ctx context.Context, staffID uuid.UUID, weekday int) (*model.StaffSchedule, error)
		ListStaffSchedules(ctx context.Context, staffID uuid.UUID) ([]*model.StaffSchedule, error)
		UpsertStaffSchedule(ctx context.Context, entry *model.StaffSchedule) error

		ListLeavesCovering(ctx context.Context, staffID uuid.UUID, date time.Time) ([]*model.StaffLeave, error)
		ListStaffLeaves(ctx context.Context, staffID uuid.UUID) ([]*model.StaffLeave, error)
		CreateStaffLeave(ctx context.Context, leave *model.StaffLeave) error
		DeleteStaffLeave(ctx context.Context, id uuid.UUID) error
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, activeOnly bool) ([]*model.Service, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		Update(ctx context.Context, staff *model.Staff) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, activeOnly bool) ([]*model.Staff, error)
		SetServices(ctx context.Context, staffID uuid.UUID, serviceIDs []uuid.UUID) error
	}

	ClientRepository interface {
		GetByEmail(ctx context.Context, email string) (*model.Client, error)
		ListWithStats(ctx context.Context) ([]*model.ClientStats, error)
	}

	// BookingTx is the transaction-scoped view of the ledger used by
	// booking creation. LockStaffDay serializes all writers for one
	// (staff, date) pair; the exclusion constraint in the schema is the
	// backstop if a writer bypasses the lock.
	BookingTx interface {
		LockStaffDay(ctx context.Context, staffID uuid.UUID, date time.Time) error
		ListForStaffRange(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Booking, error)
		HasOverlap(ctx context.Context, staffID uuid.UUID, start, end time.Time) (bool, error)
		Create(ctx context.Context, booking *model.Booking) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
		UpsertClient(ctx context.Context, client *model.Client) (*model.Client, error)
		CreateOutboxEvent(ctx context.Context, event *model.OutboxEvent) error
	}

	BookingRepository interface {
		WithTx(ctx context.Context, fn func(tx BookingTx) error) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		ListForStaffRange(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Booking, error)
	}

	IntakeRepository interface {
		CreateProfile(ctx context.Context, profile *model.IntakeProfile) error
		UpdateProfile(ctx context.Context, profile *model.IntakeProfile) error
		GetProfile(ctx context.Context, id uuid.UUID) (*model.IntakeProfile, error)
		GetProfileByEmail(ctx context.Context, email string) (*model.IntakeProfile, error)
		ListProfiles(ctx context.Context) ([]*model.IntakeProfile, error)
		ExpireAll(ctx context.Context) (int64, error)
		ExpireOne(ctx context.Context, id uuid.UUID) error

		// GetActiveDisclaimer returns (nil, nil) when no version has
		// been published, like GetProfileByEmail does for absence.
		GetActiveDisclaimer(ctx context.Context) (*model.Disclaimer, error)
		CreateDisclaimer(ctx context.Context, disclaimer *model.Disclaimer) error
	}

	OutboxRepository interface {
		BeginTxx(ctx context.Context) (*sqlx.Tx, error)
		GetPendingEventsWithLock(ctx context.Context, tx *sqlx.Tx, limit int) ([]*model.OutboxEvent, error)
		UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		IncrementRetryTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, retryAt time.Time, errorMessage string) error
		MoveToDeadLetterTx(ctx context.Context, tx *sqlx.Tx, event *model.OutboxEvent) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
