package booking

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/repository"
	"github.com/theminddepartment/booking-api/internal/service/availability"
	apperrors "github.com/theminddepartment/booking-api/pkg/errors"
	"github.com/theminddepartment/booking-api/pkg/logger"
	"github.com/theminddepartment/booking-api/pkg/metrics"
)

// Service is the Booking Ledger. Create is the only write path that
// races with itself; it serializes per (staff, date) with an advisory
// lock and re-validates the requested slot inside the transaction.
type Service struct {
	bookings     repository.BookingRepository
	services     repository.ServiceRepository
	staff        repository.StaffRepository
	intake       repository.IntakeRepository
	clients      repository.ClientRepository
	availability *availability.Service
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(
	bookings repository.BookingRepository,
	services repository.ServiceRepository,
	staff repository.StaffRepository,
	intake repository.IntakeRepository,
	clients repository.ClientRepository,
	avail *availability.Service,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		bookings:     bookings,
		services:     services,
		staff:        staff,
		intake:       intake,
		clients:      clients,
		availability: avail,
		metrics:      m,
		logger:       log,
	}
}

// Create validates the request against the live calendar and ledger and
// inserts a confirmed booking. The whole check-then-insert runs in one
// transaction behind a per-(staff, date) advisory lock, so concurrent
// requests for the same slot resolve to exactly one winner; the loser
// gets SLOT_NO_LONGER_AVAILABLE.
func (s *Service) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	date, err := time.ParseInLocation(model.DateFormat, req.Date, time.Local)
	if err != nil {
		return nil, apperrors.NewValidation("invalid date", err)
	}
	startOfDay, err := model.ParseTimeOfDay(req.Time)
	if err != nil {
		return nil, apperrors.NewValidation("invalid time", err)
	}
	start, err := startOfDay.On(date)
	if err != nil {
		return nil, apperrors.NewValidation("invalid time", err)
	}

	svc, err := s.services.Get(ctx, req.ServiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("service", err)
	}
	if err != nil {
		return nil, err
	}
	staff, err := s.staff.Get(ctx, req.StaffID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("staff", err)
	}
	if err != nil {
		return nil, err
	}
	if !svc.Active || !staff.Active || !staff.Offers(svc.ID) {
		return nil, s.reject(apperrors.NewConflict(apperrors.CodeInactiveServiceOrStaff,
			"the selected service or staff member is no longer available"))
	}

	if err := s.checkConsent(ctx, req.ClientEmail); err != nil {
		return nil, err
	}

	end := start.Add(time.Duration(svc.DurationMinutes) * time.Minute)
	booking := &model.Booking{
		ID:          uuid.New(),
		ServiceID:   svc.ID,
		StaffID:     staff.ID,
		ServiceName: svc.Name,
		Price:       svc.Price,
		StartTime:   start,
		EndTime:     end,
		Status:      model.BookingStatusConfirmed,
		Notes:       req.Notes,
	}

	err = s.bookings.WithTx(ctx, func(tx repository.BookingTx) error {
		if err := tx.LockStaffDay(ctx, staff.ID, date); err != nil {
			return fmt.Errorf("failed to lock staff day: %w", err)
		}

		// Regenerate the day's slots against transaction-visible ledger
		// state; everything the public slots endpoint saw may be stale
		// by now.
		day, err := s.availability.ResolveDay(ctx, staff.ID, date)
		if err != nil {
			return err
		}
		dayStart := model.DateOnly(date)
		current, err := tx.ListForStaffRange(ctx, staff.ID, dayStart, dayStart.Add(24*time.Hour))
		if err != nil {
			return err
		}
		slots := availability.BuildSlots(day, svc.DurationMinutes, availability.BusyIntervals(current), s.availability.Now())
		if err := matchSlot(slots, start); err != nil {
			return err
		}

		overlap, err := tx.HasOverlap(ctx, staff.ID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return apperrors.NewConflict(apperrors.CodeSlotNoLongerAvailable,
				"the requested slot is no longer available")
		}

		client, err := tx.UpsertClient(ctx, &model.Client{
			Name:  req.ClientName,
			Email: req.ClientEmail,
			Phone: req.ClientPhone,
		})
		if err != nil {
			return err
		}
		booking.ClientID = client.ID

		if err := tx.Create(ctx, booking); err != nil {
			if errors.Is(err, repository.ErrBookingOverlap) {
				return apperrors.NewConflict(apperrors.CodeSlotNoLongerAvailable,
					"the requested slot is no longer available")
			}
			return err
		}
		return s.writeEvent(ctx, tx, model.EventBookingCreated, booking)
	})
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			return nil, s.reject(appErr)
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}
	if s.logger != nil {
		s.logger.WithFields(map[string]interface{}{
			"booking_id": booking.ID.String(),
			"staff_id":   booking.StaffID.String(),
			"service_id": booking.ServiceID.String(),
			"start_time": booking.StartTime,
		}).Info("booking confirmed")
	}
	return booking, nil
}

// matchSlot locates the requested start on the generated grid and
// translates its state into a conflict error. A start that is not on the
// grid at all is outside the working window.
func matchSlot(slots []model.Slot, start time.Time) error {
	for _, slot := range slots {
		if !slot.StartTime.Equal(start) {
			continue
		}
		if slot.Available {
			return nil
		}
		if slot.Reason == model.SlotReasonClosed {
			return apperrors.NewConflict(apperrors.CodeOutsideWorkingHours,
				"the requested time falls within a closure")
		}
		return apperrors.NewConflict(apperrors.CodeSlotNoLongerAvailable,
			"the requested slot is no longer available")
	}
	return apperrors.NewConflict(apperrors.CodeOutsideWorkingHours,
		"the requested time is outside working hours")
}

// checkConsent is the Consent Gate: the booking email must have a
// completed, unexpired intake profile.
func (s *Service) checkConsent(ctx context.Context, email string) error {
	profile, err := s.intake.GetProfileByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check intake profile: %w", err)
	}
	if profile == nil || !profile.IsValidForBooking(s.availability.Now()) {
		return s.reject(apperrors.NewConflict(apperrors.CodeConsentRequired,
			"a completed intake form is required before booking"))
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("booking", err)
	}
	return booking, err
}

func (s *Service) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	return s.bookings.List(ctx, filters)
}

// Cancel frees the booking's interval. Idempotent on already-cancelled
// bookings; completed bookings cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.transition(ctx, id, model.BookingStatusCancelled, model.EventBookingCancelled)
}

// Complete marks the appointment as having happened, which releases the
// interval and feeds the client revenue aggregates.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.transition(ctx, id, model.BookingStatusCompleted, model.EventBookingCompleted)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, target model.BookingStatus, eventType string) (*model.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == target {
		return booking, nil
	}
	if !booking.Status.Blocks() {
		return nil, apperrors.NewValidation(
			fmt.Sprintf("cannot mark a %s booking as %s", booking.Status, target), nil)
	}

	err = s.bookings.WithTx(ctx, func(tx repository.BookingTx) error {
		if err := tx.UpdateStatus(ctx, id, target); err != nil {
			return err
		}
		booking.Status = target
		return s.writeEvent(ctx, tx, eventType, booking)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// ListClients returns every client with booking counts and revenue
// totals computed from ledger price snapshots.
func (s *Service) ListClients(ctx context.Context) ([]*model.ClientStats, error) {
	return s.clients.ListWithStats(ctx)
}

// GetClientByEmail looks up a single client record for the admin UI.
func (s *Service) GetClientByEmail(ctx context.Context, email string) (*model.Client, error) {
	client, err := s.clients.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("client", err)
	}
	return client, err
}

func (s *Service) writeEvent(ctx context.Context, tx repository.BookingTx, eventType string, booking *model.Booking) error {
	payload, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return tx.CreateOutboxEvent(ctx, &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   payload,
		Status:    model.OutboxStatusPending,
	})
}

func (s *Service) reject(appErr *apperrors.AppError) *apperrors.AppError {
	if s.metrics != nil {
		switch appErr.Code {
		case apperrors.CodeSlotNoLongerAvailable, apperrors.CodeOutsideWorkingHours,
			apperrors.CodeInactiveServiceOrStaff, apperrors.CodeConsentRequired:
			s.metrics.BookingConflicts.WithLabelValues(string(appErr.Code)).Inc()
		}
	}
	return appErr
}
