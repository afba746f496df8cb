package booking

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/repository"
	"github.com/theminddepartment/booking-api/internal/service/availability"
	apperrors "github.com/theminddepartment/booking-api/pkg/errors"
)

// 2025-03-10 is a Monday.
var (
	testDate    = time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	testStaffID = uuid.New()
	testSvcID   = uuid.New()
)

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.Local)
}

type fakeCalendar struct{}

func (fakeCalendar) GetBusinessHours(_ context.Context, weekday int) (*model.BusinessHours, error) {
	if weekday != 0 {
		return nil, nil
	}
	return &model.BusinessHours{DayOfWeek: 0, IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"}, nil
}

func (fakeCalendar) ListBusinessHours(context.Context) ([]*model.BusinessHours, error) {
	return nil, nil
}
func (fakeCalendar) UpsertBusinessHours(context.Context, *model.BusinessHours) error { return nil }
func (fakeCalendar) ListClosuresByDate(context.Context, time.Time) ([]*model.Closure, error) {
	return nil, nil
}
func (fakeCalendar) ListClosures(context.Context, time.Time, time.Time) ([]*model.Closure, error) {
	return nil, nil
}
func (fakeCalendar) CreateClosure(context.Context, *model.Closure) error { return nil }
func (fakeCalendar) DeleteClosure(context.Context, uuid.UUID) error      { return nil }

func (fakeCalendar) GetStaffSchedule(_ context.Context, _ uuid.UUID, weekday int) (*model.StaffSchedule, error) {
	if weekday != 0 {
		return nil, nil
	}
	return &model.StaffSchedule{StaffID: testStaffID, DayOfWeek: 0, IsWorking: true, StartTime: "09:00", EndTime: "17:00"}, nil
}

func (fakeCalendar) ListStaffSchedules(context.Context, uuid.UUID) ([]*model.StaffSchedule, error) {
	return nil, nil
}
func (fakeCalendar) UpsertStaffSchedule(context.Context, *model.StaffSchedule) error { return nil }
func (fakeCalendar) ListLeavesCovering(context.Context, uuid.UUID, time.Time) ([]*model.StaffLeave, error) {
	return nil, nil
}
func (fakeCalendar) ListStaffLeaves(context.Context, uuid.UUID) ([]*model.StaffLeave, error) {
	return nil, nil
}
func (fakeCalendar) CreateStaffLeave(context.Context, *model.StaffLeave) error { return nil }
func (fakeCalendar) DeleteStaffLeave(context.Context, uuid.UUID) error         { return nil }

type fakeServiceRepo struct {
	services map[uuid.UUID]*model.Service
}

func (f *fakeServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	if s, ok := f.services[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeServiceRepo) Create(context.Context, *model.Service) error { return nil }
func (f *fakeServiceRepo) Update(context.Context, *model.Service) error { return nil }
func (f *fakeServiceRepo) Delete(context.Context, uuid.UUID) error      { return nil }
func (f *fakeServiceRepo) List(context.Context, bool) ([]*model.Service, error) {
	return nil, nil
}

type fakeStaffRepo struct {
	members map[uuid.UUID]*model.Staff
}

func (f *fakeStaffRepo) Get(_ context.Context, id uuid.UUID) (*model.Staff, error) {
	if s, ok := f.members[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStaffRepo) Create(context.Context, *model.Staff) error { return nil }
func (f *fakeStaffRepo) Update(context.Context, *model.Staff) error { return nil }
func (f *fakeStaffRepo) Delete(context.Context, uuid.UUID) error    { return nil }
func (f *fakeStaffRepo) List(context.Context, bool) ([]*model.Staff, error) {
	return nil, nil
}
func (f *fakeStaffRepo) SetServices(context.Context, uuid.UUID, []uuid.UUID) error { return nil }

type fakeIntakeRepo struct {
	profiles map[string]*model.IntakeProfile
}

func (f *fakeIntakeRepo) GetProfileByEmail(_ context.Context, email string) (*model.IntakeProfile, error) {
	return f.profiles[email], nil
}

func (f *fakeIntakeRepo) CreateProfile(context.Context, *model.IntakeProfile) error { return nil }
func (f *fakeIntakeRepo) UpdateProfile(context.Context, *model.IntakeProfile) error { return nil }
func (f *fakeIntakeRepo) GetProfile(context.Context, uuid.UUID) (*model.IntakeProfile, error) {
	return nil, sql.ErrNoRows
}
func (f *fakeIntakeRepo) ListProfiles(context.Context) ([]*model.IntakeProfile, error) {
	return nil, nil
}
func (f *fakeIntakeRepo) ExpireAll(context.Context) (int64, error)   { return 0, nil }
func (f *fakeIntakeRepo) ExpireOne(context.Context, uuid.UUID) error { return nil }
func (f *fakeIntakeRepo) GetActiveDisclaimer(context.Context) (*model.Disclaimer, error) {
	return nil, nil
}
func (f *fakeIntakeRepo) CreateDisclaimer(context.Context, *model.Disclaimer) error { return nil }

type fakeClientRepo struct {
	clients map[string]*model.Client
}

func (f fakeClientRepo) GetByEmail(_ context.Context, email string) (*model.Client, error) {
	if c, ok := f.clients[email]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}
func (f fakeClientRepo) ListWithStats(context.Context) ([]*model.ClientStats, error) {
	return nil, nil
}

// fakeLedger mimics the transactional ledger: WithTx serializes writers
// the way the advisory lock does, and transaction writes only land when
// the function returns without error.
type fakeLedger struct {
	mu       sync.Mutex
	bookings []*model.Booking
	events   []*model.OutboxEvent
	clients  map[string]*model.Client
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{clients: map[string]*model.Client{}}
}

type fakeTx struct {
	ledger      *fakeLedger
	newBookings []*model.Booking
	newEvents   []*model.OutboxEvent
	statuses    map[uuid.UUID]model.BookingStatus
}

func (l *fakeLedger) WithTx(_ context.Context, fn func(tx repository.BookingTx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &fakeTx{ledger: l, statuses: map[uuid.UUID]model.BookingStatus{}}
	if err := fn(tx); err != nil {
		return err
	}

	l.bookings = append(l.bookings, tx.newBookings...)
	l.events = append(l.events, tx.newEvents...)
	for id, status := range tx.statuses {
		for _, b := range l.bookings {
			if b.ID == id {
				b.Status = status
			}
		}
	}
	return nil
}

func (l *fakeLedger) Get(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (l *fakeLedger) List(context.Context, *model.BookingFilters) ([]*model.Booking, error) {
	return l.bookings, nil
}

func (l *fakeLedger) ListForStaffRange(_ context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.listRange(staffID, from, to), nil
}

func (l *fakeLedger) listRange(staffID uuid.UUID, from, to time.Time) []*model.Booking {
	var out []*model.Booking
	for _, b := range l.bookings {
		if b.StaffID == staffID && b.StartTime.Before(to) && b.EndTime.After(from) {
			out = append(out, b)
		}
	}
	return out
}

func (t *fakeTx) LockStaffDay(context.Context, uuid.UUID, time.Time) error { return nil }

func (t *fakeTx) ListForStaffRange(_ context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Booking, error) {
	return t.ledger.listRange(staffID, from, to), nil
}

func (t *fakeTx) HasOverlap(_ context.Context, staffID uuid.UUID, start, end time.Time) (bool, error) {
	for _, b := range t.ledger.listRange(staffID, start, end) {
		if b.Status.Blocks() {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) Create(_ context.Context, booking *model.Booking) error {
	t.newBookings = append(t.newBookings, booking)
	return nil
}

func (t *fakeTx) UpdateStatus(_ context.Context, id uuid.UUID, status model.BookingStatus) error {
	t.statuses[id] = status
	return nil
}

func (t *fakeTx) UpsertClient(_ context.Context, client *model.Client) (*model.Client, error) {
	if existing, ok := t.ledger.clients[client.Email]; ok {
		return existing, nil
	}
	client.ID = uuid.New()
	t.ledger.clients[client.Email] = client
	return client, nil
}

func (t *fakeTx) CreateOutboxEvent(_ context.Context, event *model.OutboxEvent) error {
	t.newEvents = append(t.newEvents, event)
	return nil
}

type fixture struct {
	svc    *Service
	ledger *fakeLedger
	sr     *fakeServiceRepo
	st     *fakeStaffRepo
	intake *fakeIntakeRepo
}

func newFixture(now time.Time) *fixture {
	ledger := newFakeLedger()
	sr := &fakeServiceRepo{services: map[uuid.UUID]*model.Service{
		testSvcID: {ID: testSvcID, Name: "Consultation", DurationMinutes: 60, Price: 80, Active: true},
	}}
	st := &fakeStaffRepo{members: map[uuid.UUID]*model.Staff{
		testStaffID: {ID: testStaffID, Name: "Dana", Active: true, ServiceIDs: []uuid.UUID{testSvcID}},
	}}
	validUntil := now.Add(model.IntakeValidityPeriod)
	intake := &fakeIntakeRepo{profiles: map[string]*model.IntakeProfile{
		"alex@example.com": {Email: "alex@example.com", Completed: true, ExpiresAt: &validUntil},
	}}

	avail := availability.NewService(fakeCalendar{}, st, sr, ledger, func() time.Time { return now })
	svc := NewService(ledger, sr, st, intake, fakeClientRepo{}, avail, nil, nil)
	return &fixture{svc: svc, ledger: ledger, sr: sr, st: st, intake: intake}
}

func validRequest() *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		ServiceID:   testSvcID,
		StaffID:     testStaffID,
		Date:        "2025-03-10",
		Time:        "10:00",
		ClientName:  "Alex",
		ClientEmail: "alex@example.com",
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture(at(8, 0))

	booking, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, at(10, 0), booking.StartTime)
	assert.Equal(t, at(11, 0), booking.EndTime)
	assert.Equal(t, "Consultation", booking.ServiceName)
	assert.Equal(t, 80.0, booking.Price)
	assert.NotEqual(t, uuid.Nil, booking.ClientID)

	require.Len(t, f.ledger.events, 1)
	assert.Equal(t, model.EventBookingCreated, f.ledger.events[0].EventType)
}

func TestCreateBookingSlotTaken(t *testing.T) {
	f := newFixture(at(8, 0))

	_, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), validRequest())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSlotNoLongerAvailable))
}

func TestCreateBookingOverlappingSlotTaken(t *testing.T) {
	f := newFixture(at(8, 0))

	_, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	// 10:30 is on the grid but overlaps the 10:00-11:00 booking.
	req := validRequest()
	req.Time = "10:30"
	_, err = f.svc.Create(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSlotNoLongerAvailable))
}

func TestCreateBookingOutsideWorkingHours(t *testing.T) {
	f := newFixture(at(8, 0))

	tests := []struct {
		name string
		time string
	}{
		{name: "before opening", time: "08:00"},
		{name: "off the grid", time: "10:15"},
		{name: "crosses closing", time: "16:30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			req.Time = tt.time
			_, err := f.svc.Create(context.Background(), req)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeOutsideWorkingHours), "got %v", err)
		})
	}
}

func TestCreateBookingPastSlot(t *testing.T) {
	f := newFixture(at(10, 30))

	_, err := f.svc.Create(context.Background(), validRequest())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSlotNoLongerAvailable))
}

func TestCreateBookingInactive(t *testing.T) {
	t.Run("inactive service", func(t *testing.T) {
		f := newFixture(at(8, 0))
		f.sr.services[testSvcID].Active = false

		_, err := f.svc.Create(context.Background(), validRequest())
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInactiveServiceOrStaff))
	})

	t.Run("inactive staff", func(t *testing.T) {
		f := newFixture(at(8, 0))
		f.st.members[testStaffID].Active = false

		_, err := f.svc.Create(context.Background(), validRequest())
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInactiveServiceOrStaff))
	})

	t.Run("staff does not offer service", func(t *testing.T) {
		f := newFixture(at(8, 0))
		f.st.members[testStaffID].ServiceIDs = nil

		_, err := f.svc.Create(context.Background(), validRequest())
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInactiveServiceOrStaff))
	})
}

func TestCreateBookingConsentGate(t *testing.T) {
	t.Run("no intake profile", func(t *testing.T) {
		f := newFixture(at(8, 0))
		req := validRequest()
		req.ClientEmail = "stranger@example.com"

		_, err := f.svc.Create(context.Background(), req)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConsentRequired))
	})

	t.Run("expired intake profile", func(t *testing.T) {
		f := newFixture(at(8, 0))
		f.intake.profiles["alex@example.com"].Expired = true

		_, err := f.svc.Create(context.Background(), validRequest())
		assert.True(t, apperrors.IsCode(err, apperrors.CodeConsentRequired))
	})
}

func TestCreateBookingInvalidInput(t *testing.T) {
	f := newFixture(at(8, 0))

	req := validRequest()
	req.Date = "10/03/2025"
	_, err := f.svc.Create(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	req = validRequest()
	req.Time = "late"
	_, err = f.svc.Create(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestCreateBookingConcurrent(t *testing.T) {
	// Two requests race for the same slot; exactly one must win.
	f := newFixture(at(8, 0))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Create(context.Background(), validRequest())
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
		} else if apperrors.IsCode(err, apperrors.CodeSlotNoLongerAvailable) {
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Len(t, f.ledger.bookings, 1)
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(at(8, 0))

	booking, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)

	require.Len(t, f.ledger.events, 2)
	assert.Equal(t, model.EventBookingCancelled, f.ledger.events[1].EventType)

	// The slot opens up again.
	_, err = f.svc.Create(context.Background(), validRequest())
	assert.NoError(t, err)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newFixture(at(8, 0))

	booking, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)
	again, err := f.svc.Cancel(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, again.Status)

	// Only one cancellation event.
	assert.Len(t, f.ledger.events, 2)
}

func TestCompleteBooking(t *testing.T) {
	f := newFixture(at(8, 0))

	booking, err := f.svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	completed, err := f.svc.Complete(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, completed.Status)

	// A completed booking cannot be cancelled afterwards.
	_, err = f.svc.Cancel(context.Background(), booking.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestCancelUnknownBooking(t *testing.T) {
	f := newFixture(at(8, 0))

	_, err := f.svc.Cancel(context.Background(), uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestGetClientByEmail(t *testing.T) {
	f := newFixture(at(8, 0))
	known := &model.Client{ID: uuid.New(), Name: "Alex", Email: "alex@example.com"}
	f.svc.clients = fakeClientRepo{clients: map[string]*model.Client{known.Email: known}}

	client, err := f.svc.GetClientByEmail(context.Background(), known.Email)
	require.NoError(t, err)
	assert.Equal(t, known.ID, client.ID)

	_, err = f.svc.GetClientByEmail(context.Background(), "nobody@example.com")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
