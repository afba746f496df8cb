package availability

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/repository"
)

// 2025-03-10 is a Monday.
var (
	testDate    = time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	testStaffID = uuid.New()
	testSvcID   = uuid.New()
)

type fakeCalendar struct {
	hours     map[int]*model.BusinessHours
	schedules map[int]*model.StaffSchedule
	closures  []*model.Closure
	leaves    []*model.StaffLeave
}

func (f *fakeCalendar) GetBusinessHours(_ context.Context, weekday int) (*model.BusinessHours, error) {
	return f.hours[weekday], nil
}

func (f *fakeCalendar) ListBusinessHours(context.Context) ([]*model.BusinessHours, error) {
	return nil, nil
}

func (f *fakeCalendar) UpsertBusinessHours(context.Context, *model.BusinessHours) error {
	return nil
}

func (f *fakeCalendar) ListClosuresByDate(_ context.Context, date time.Time) ([]*model.Closure, error) {
	var out []*model.Closure
	for _, c := range f.closures {
		if model.DateOnly(c.Date).Equal(model.DateOnly(date)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCalendar) ListClosures(context.Context, time.Time, time.Time) ([]*model.Closure, error) {
	return f.closures, nil
}

func (f *fakeCalendar) CreateClosure(context.Context, *model.Closure) error { return nil }
func (f *fakeCalendar) DeleteClosure(context.Context, uuid.UUID) error      { return nil }

func (f *fakeCalendar) GetStaffSchedule(_ context.Context, _ uuid.UUID, weekday int) (*model.StaffSchedule, error) {
	return f.schedules[weekday], nil
}

func (f *fakeCalendar) ListStaffSchedules(context.Context, uuid.UUID) ([]*model.StaffSchedule, error) {
	return nil, nil
}

func (f *fakeCalendar) UpsertStaffSchedule(context.Context, *model.StaffSchedule) error {
	return nil
}

func (f *fakeCalendar) ListLeavesCovering(_ context.Context, staffID uuid.UUID, date time.Time) ([]*model.StaffLeave, error) {
	var out []*model.StaffLeave
	for _, l := range f.leaves {
		if l.StaffID == staffID && l.Covers(date) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCalendar) ListStaffLeaves(context.Context, uuid.UUID) ([]*model.StaffLeave, error) {
	return f.leaves, nil
}

func (f *fakeCalendar) CreateStaffLeave(context.Context, *model.StaffLeave) error { return nil }
func (f *fakeCalendar) DeleteStaffLeave(context.Context, uuid.UUID) error         { return nil }

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

type fakeBookingRepo struct {
	bookings []*model.Booking
}

func (f *fakeBookingRepo) WithTx(context.Context, func(tx repository.BookingTx) error) error {
	panic("not used")
}

func (f *fakeBookingRepo) Get(context.Context, uuid.UUID) (*model.Booking, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeBookingRepo) List(context.Context, *model.BookingFilters) ([]*model.Booking, error) {
	return f.bookings, nil
}

func (f *fakeBookingRepo) ListForStaffRange(_ context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.StaffID == staffID && b.StartTime.Before(to) && b.EndTime.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func at(h, m int) time.Time {
	return time.Date(2025, 3, 10, h, m, 0, 0, time.Local)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func newTestService(cal *fakeCalendar, bookings []*model.Booking, now time.Time) *Service {
	staff := &fakeStaffRepo{members: map[uuid.UUID]*model.Staff{
		testStaffID: {ID: testStaffID, Name: "Dana", Active: true, ServiceIDs: []uuid.UUID{testSvcID}},
	}}
	services := &fakeServiceRepo{services: map[uuid.UUID]*model.Service{
		testSvcID: {ID: testSvcID, Name: "Consultation", DurationMinutes: 60, Active: true},
	}}
	return NewService(cal, staff, services, &fakeBookingRepo{bookings: bookings}, fixedClock(now))
}

func openCalendar() *fakeCalendar {
	return &fakeCalendar{
		hours: map[int]*model.BusinessHours{
			0: {DayOfWeek: 0, IsOpen: true, OpenTime: "09:00", CloseTime: "17:00"},
		},
		schedules: map[int]*model.StaffSchedule{
			0: {StaffID: testStaffID, DayOfWeek: 0, IsWorking: true, StartTime: "09:00", EndTime: "13:00"},
		},
	}
}

func starts(slots []model.Slot) []time.Time {
	out := make([]time.Time, len(slots))
	for i, s := range slots {
		out[i] = s.StartTime
	}
	return out
}

func TestGenerateSlotsBaseWindow(t *testing.T) {
	// Staff hours narrow business hours to 09:00-13:00; a 60-minute
	// service on a 30-minute grid fits starts 09:00 through 12:00.
	svc := newTestService(openCalendar(), nil, at(0, 0))

	slots, err := svc.GenerateSlots(context.Background(), testStaffID, testSvcID, testDate)
	require.NoError(t, err)

	want := []time.Time{
		at(9, 0), at(9, 30), at(10, 0), at(10, 30),
		at(11, 0), at(11, 30), at(12, 0),
	}
	assert.Equal(t, want, starts(slots))
	for _, s := range slots {
		assert.True(t, s.Available)
		assert.Equal(t, s.StartTime.Add(time.Hour), s.EndTime)
	}
}

func TestGenerateSlotsPartialClosure(t *testing.T) {
	cal := openCalendar()
	start, end := model.TimeOfDay("10:00"), model.TimeOfDay("11:00")
	cal.closures = []*model.Closure{
		{Date: testDate, StartTime: &start, EndTime: &end, Reason: "training"},
	}
	svc := newTestService(cal, nil, at(0, 0))

	slots, err := svc.GenerateSlots(context.Background(), testStaffID, testSvcID, testDate)
	require.NoError(t, err)
	require.Len(t, slots, 7)

	// Any candidate whose interval overlaps the closure is marked
	// closed, including the 09:30 start whose 60-minute span runs into
	// the 10:00-11:00 window. Containment is deliberate: a slot is
	// offered only when the whole appointment fits outside closures.
	closed := map[time.Time]bool{at(9, 30): true, at(10, 0): true, at(10, 30): true}
	for _, s := range slots {
		if closed[s.StartTime] {
			assert.False(t, s.Available, "start %v", s.StartTime)
			assert.Equal(t, model.SlotReasonClosed, s.Reason)
		} else {
			assert.True(t, s.Available, "start %v", s.StartTime)
		}
	}
}

func TestGenerateSlotsAllDayClosure(t *testing.T) {
	cal := openCalendar()
	cal.closures = []*model.Closure{{Date: testDate, AllDay: true, Reason: "holiday"}}
	svc := newTestService(cal, nil, at(0, 0))

	slots, err := svc.GenerateSlots(context.Background(), testStaffID, testSvcID, testDate)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlotsExistingBooking(t *testing.T) {
	booked := []*model.Booking{
		{StaffID: testStaffID, StartTime: at(11, 0), EndTime: at(12, 0), Status: model.BookingStatusConfirmed},
	}
	svc := newTestService(openCalendar(), booked, at(0, 0))

	slots, err := svc.GenerateSlots(context.Background(), testStaffID, testSvcID, testDate)
	require.NoError(t, err)

	unavailable := map[time.Time]bool{at(10, 30): true, at(11, 0): true, at(11, 30): true}
	for _, s := range slots {
		if unavailable[s.StartTime] {
			assert.False(t, s.Available, "start %v", s.StartTime)
			assert.Equal(t, model.SlotReasonBooked, s.Reason)
		} else {
			assert.True(t, s.Available, "start %v", s.StartTime)
		}
	}
}

func TestGenerateSlotsCancelledBookingFreesSlot(t *testing.T) {
	booked := []*model.Booking{
		{StaffID: testStaffID, StartTime: at(11, 0), EndTime: at(12, 0), Status: model.BookingStatusCancelled},
		{StaffID: testStaffID, StartTime: at(9, 0), EndTime: at(10, 0), Status: model.BookingStatusCompleted},
	}
	svc := newTestService(openCalendar(), booked, at(0, 0))

	slots, err := svc.GenerateSlots(context.Background(), testStaffID, testSvcID, testDate)
	require.NoError(t, err)

	for _, s := range slots {
		assert.True(t, s.Available, "start %v", s.StartTime)
	}
}

func TestGenerateSlotsPastMarking(t *testing.T) {
	// Now is 10:15: starts at or after 10:30 remain available, earlier
	// ones are past. Past wins over other reasons.
	cal := openCalendar()
	start, end := model.TimeOfDay("09:00"), model.TimeOfDay("10:00")
	cal.closures = []*model.Closure{{Date: testDate, StartTime: &start, EndTime: &end}}
	svc := newTestService(cal, nil, at(10, 15))

	slots, err := svc.GenerateSlots(context.Background(), testStaffID, testSvcID, testDate)
	require.NoError(t, err)

	for _, s := range slots {
		if s.StartTime.Before(at(10, 15)) {
			assert.False(t, s.Available, "start %v", s.StartTime)
			assert.Equal(t, model.SlotReasonPast, s.Reason, "start %v", s.StartTime)
		} else {
			assert.True(t, s.Available, "start %v", s.StartTime)
		}
	}
}

func TestGenerateSlotsClosedConfigurations(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeCalendar)
	}{
		{name: "no business hours row", setup: func(c *fakeCalendar) { delete(c.hours, 0) }},
		{name: "business closed", setup: func(c *fakeCalendar) { c.hours[0].IsOpen = false }},
		{name: "no staff schedule row", setup: func(c *fakeCalendar) { delete(c.schedules, 0) }},
		{name: "staff not working", setup: func(c *fakeCalendar) { c.schedules[0].IsWorking = false }},
		{name: "empty intersection", setup: func(c *fakeCalendar) {
			c.schedules[0].StartTime = "17:00"
			c.schedules[0].EndTime = "20:00"
		}},
		{name: "staff on leave", setup: func(c *fakeCalendar) {
			c.leaves = []*model.StaffLeave{{
				StaffID:   testStaffID,
				StartDate: testDate.AddDate(0, 0, -1),
				EndDate:   testDate.AddDate(0, 0, 1),
			}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := openCalendar()
			tt.setup(cal)
			svc := newTestService(cal, nil, at(0, 0))

			slots, err := svc.GenerateSlots(context.Background(), testStaffID, testSvcID, testDate)
			require.NoError(t, err)
			assert.Empty(t, slots)
		})
	}
}

func TestGenerateSlotsInactiveOrUnoffered(t *testing.T) {
	cal := openCalendar()

	t.Run("inactive service", func(t *testing.T) {
		svc := newTestService(cal, nil, at(0, 0))
		svc.services.(*fakeServiceRepo).services[testSvcID].Active = false
		defer func() { svc.services.(*fakeServiceRepo).services[testSvcID].Active = true }()

		slots, err := svc.GenerateSlots(context.Background(), testStaffID, testSvcID, testDate)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("staff does not offer service", func(t *testing.T) {
		svc := newTestService(cal, nil, at(0, 0))
		svc.staff.(*fakeStaffRepo).members[testStaffID].ServiceIDs = nil

		slots, err := svc.GenerateSlots(context.Background(), testStaffID, testSvcID, testDate)
		require.NoError(t, err)
		assert.Empty(t, slots)
	})
}

func TestGenerateSlotsUnknownIDs(t *testing.T) {
	svc := newTestService(openCalendar(), nil, at(0, 0))

	_, err := svc.GenerateSlots(context.Background(), testStaffID, uuid.New(), testDate)
	assert.Error(t, err)

	_, err = svc.GenerateSlots(context.Background(), uuid.New(), testSvcID, testDate)
	assert.Error(t, err)
}

func TestBuildSlotsOmitsTrailingPartial(t *testing.T) {
	day := &DayWindow{Window: model.Interval{Start: at(9, 0), End: at(10, 30)}}

	slots := BuildSlots(day, 60, nil, at(0, 0))

	assert.Equal(t, []time.Time{at(9, 0), at(9, 30)}, starts(slots))
}

func TestBuildSlotsZeroDuration(t *testing.T) {
	day := &DayWindow{Window: model.Interval{Start: at(9, 0), End: at(17, 0)}}
	assert.Empty(t, BuildSlots(day, 0, nil, at(0, 0)))
}
