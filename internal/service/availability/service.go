package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/repository"
	apperrors "github.com/theminddepartment/booking-api/pkg/errors"
)

// SlotStep is the grid step for candidate start times.
const SlotStep = 30 * time.Minute

// Clock supplies "now" so tests can pin it.
type Clock func() time.Time

// DayWindow is a staff member's resolved availability for one date: the
// base working window (business hours narrowed by staff hours) and the
// partial closures that block parts of it. Closed covers everything that
// removes the whole day: closed weekday, missing configuration, staff
// not working, empty intersection, all-day closure, leave.
type DayWindow struct {
	Closed   bool
	Window   model.Interval
	Closures []model.Interval
}

type Service struct {
	calendar repository.CalendarRepository
	staff    repository.StaffRepository
	services repository.ServiceRepository
	bookings repository.BookingRepository
	now      Clock
}

func NewService(
	calendar repository.CalendarRepository,
	staff repository.StaffRepository,
	services repository.ServiceRepository,
	bookings repository.BookingRepository,
	now Clock,
) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		calendar: calendar,
		staff:    staff,
		services: services,
		bookings: bookings,
		now:      now,
	}
}

// Now returns the service's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// ResolveDay computes the working window for a staff member on a date.
// Business hours always win over staff hours: the window is their
// intersection. Missing rows fail closed.
func (s *Service) ResolveDay(ctx context.Context, staffID uuid.UUID, date time.Time) (*DayWindow, error) {
	weekday := model.Weekday(date)

	hours, err := s.calendar.GetBusinessHours(ctx, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve business hours: %w", err)
	}
	if hours == nil || !hours.IsOpen {
		return &DayWindow{Closed: true}, nil
	}

	schedule, err := s.calendar.GetStaffSchedule(ctx, staffID, weekday)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staff schedule: %w", err)
	}
	if schedule == nil || !schedule.IsWorking {
		return &DayWindow{Closed: true}, nil
	}

	leaves, err := s.calendar.ListLeavesCovering(ctx, staffID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve staff leave: %w", err)
	}
	if len(leaves) > 0 {
		return &DayWindow{Closed: true}, nil
	}

	open, err := hours.OpenTime.On(date)
	if err != nil {
		return nil, fmt.Errorf("invalid open time: %w", err)
	}
	closeAt, err := hours.CloseTime.On(date)
	if err != nil {
		return nil, fmt.Errorf("invalid close time: %w", err)
	}
	start, err := schedule.StartTime.On(date)
	if err != nil {
		return nil, fmt.Errorf("invalid staff start time: %w", err)
	}
	end, err := schedule.EndTime.On(date)
	if err != nil {
		return nil, fmt.Errorf("invalid staff end time: %w", err)
	}

	window := model.Interval{Start: maxTime(open, start), End: minTime(closeAt, end)}
	if window.Empty() {
		return &DayWindow{Closed: true}, nil
	}

	closures, err := s.calendar.ListClosuresByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve closures: %w", err)
	}

	day := &DayWindow{Window: window}
	for _, c := range closures {
		if c.AllDay {
			return &DayWindow{Closed: true}, nil
		}
		if c.StartTime == nil || c.EndTime == nil {
			continue
		}
		cs, err := c.StartTime.On(date)
		if err != nil {
			return nil, fmt.Errorf("invalid closure start: %w", err)
		}
		ce, err := c.EndTime.On(date)
		if err != nil {
			return nil, fmt.Errorf("invalid closure end: %w", err)
		}
		day.Closures = append(day.Closures, model.Interval{Start: cs, End: ce})
	}
	return day, nil
}

// GenerateSlots produces the ordered candidate slots for a staff member,
// service and date. The result is recomputed fresh on every call; ledger
// state changes between calls so it is never cached.
func (s *Service) GenerateSlots(ctx context.Context, staffID, serviceID uuid.UUID, date time.Time) ([]model.Slot, error) {
	svc, err := s.services.Get(ctx, serviceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("service", err)
	}
	if err != nil {
		return nil, err
	}

	staff, err := s.staff.Get(ctx, staffID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFound("staff", err)
	}
	if err != nil {
		return nil, err
	}

	if !svc.Active || !staff.Active || !staff.Offers(serviceID) {
		return []model.Slot{}, nil
	}

	day, err := s.ResolveDay(ctx, staffID, date)
	if err != nil {
		return nil, err
	}
	if day.Closed {
		return []model.Slot{}, nil
	}

	dayStart := model.DateOnly(date)
	bookings, err := s.bookings.ListForStaffRange(ctx, staffID, dayStart, dayStart.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	return BuildSlots(day, svc.DurationMinutes, BusyIntervals(bookings), s.now()), nil
}

// BusyIntervals extracts the occupied intervals from ledger rows,
// skipping statuses that do not block.
func BusyIntervals(bookings []*model.Booking) []model.Interval {
	var busy []model.Interval
	for _, b := range bookings {
		if !b.Status.Blocks() {
			continue
		}
		busy = append(busy, model.Interval{Start: b.StartTime, End: b.EndTime})
	}
	return busy
}

// BuildSlots lays the fixed 30-minute grid over the day's base window and
// marks each candidate. Candidates whose end would cross the window end
// are omitted, not truncated. Marking order follows the pipeline: closure
// first, then ledger overlap, then past; a later mark overwrites an
// earlier one so "past" always wins for stale days.
func BuildSlots(day *DayWindow, durationMinutes int, busy []model.Interval, now time.Time) []model.Slot {
	if day == nil || day.Closed || durationMinutes <= 0 {
		return []model.Slot{}
	}

	duration := time.Duration(durationMinutes) * time.Minute
	slots := []model.Slot{}

	for start := day.Window.Start; ; start = start.Add(SlotStep) {
		end := start.Add(duration)
		if end.After(day.Window.End) {
			break
		}

		slot := model.Slot{StartTime: start, EndTime: end, Available: true}
		candidate := model.Interval{Start: start, End: end}

		for _, c := range day.Closures {
			if candidate.Overlaps(c) {
				slot.Available = false
				slot.Reason = model.SlotReasonClosed
				break
			}
		}
		for _, b := range busy {
			if candidate.Overlaps(b) {
				slot.Available = false
				slot.Reason = model.SlotReasonBooked
				break
			}
		}
		if start.Before(now) {
			slot.Available = false
			slot.Reason = model.SlotReasonPast
		}

		slots = append(slots, slot)
	}
	return slots
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
