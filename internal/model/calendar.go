package model

import (
	"time"

	"github.com/google/uuid"
)

// BusinessHours is the authoritative open/close row for one weekday.
// Weekday 0 is Monday, matching time.Weekday shifted so the business week
// starts where the admin calendar does. Absence of a row means closed.
type BusinessHours struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	IsOpen    bool      `db:"is_open" json:"is_open"`
	OpenTime  TimeOfDay `db:"open_time" json:"open_time"`
	CloseTime TimeOfDay `db:"close_time" json:"close_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StaffSchedule narrows business hours for one staff member on one weekday.
// Keyed by (staff_id, day_of_week).
type StaffSchedule struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	IsWorking bool      `db:"is_working" json:"is_working"`
	StartTime TimeOfDay `db:"start_time" json:"start_time"`
	EndTime   TimeOfDay `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Closure blocks a whole date, or [start_time, end_time) on that date,
// for all staff. Multiple closures on one date compose by union.
type Closure struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Date      time.Time  `db:"date" json:"date"`
	Reason    string     `db:"reason" json:"reason"`
	AllDay    bool       `db:"all_day" json:"all_day"`
	StartTime *TimeOfDay `db:"start_time" json:"start_time,omitempty"`
	EndTime   *TimeOfDay `db:"end_time" json:"end_time,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// StaffLeave blocks a date range for a single staff member.
type StaffLeave struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Covers reports whether the leave includes the given date.
func (l *StaffLeave) Covers(date time.Time) bool {
	day := DateOnly(date)
	return !day.Before(DateOnly(l.StartDate)) && !day.After(DateOnly(l.EndDate))
}

// UpsertBusinessHoursRequest upserts the row for one weekday.
type UpsertBusinessHoursRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	IsOpen    bool   `json:"is_open"`
	OpenTime  string `json:"open_time" binding:"omitempty,timeofday"`
	CloseTime string `json:"close_time" binding:"omitempty,timeofday"`
}

// BatchBusinessHoursRequest saves several weekday rows in one call. Each
// row is applied independently; failures are reported per weekday.
type BatchBusinessHoursRequest struct {
	Entries []UpsertBusinessHoursRequest `json:"entries" binding:"required,min=1,max=7,dive"`
}

// BusinessHoursFailure identifies exactly which weekday of a batch failed.
type BusinessHoursFailure struct {
	DayOfWeek int    `json:"day_of_week"`
	Message   string `json:"message"`
}

type UpsertStaffScheduleRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	IsWorking bool   `json:"is_working"`
	StartTime string `json:"start_time" binding:"omitempty,timeofday"`
	EndTime   string `json:"end_time" binding:"omitempty,timeofday"`
}

type BatchStaffScheduleRequest struct {
	Entries []UpsertStaffScheduleRequest `json:"entries" binding:"required,min=1,max=7,dive"`
}

type CreateClosureRequest struct {
	Date      string `json:"date" binding:"required,dateonly"`
	Reason    string `json:"reason" binding:"max=255"`
	AllDay    bool   `json:"all_day"`
	StartTime string `json:"start_time" binding:"omitempty,timeofday"`
	EndTime   string `json:"end_time" binding:"omitempty,timeofday"`
}

type CreateStaffLeaveRequest struct {
	StaffID   uuid.UUID `json:"staff_id" binding:"required"`
	StartDate string    `json:"start_date" binding:"required,dateonly"`
	EndDate   string    `json:"end_date" binding:"required,dateonly"`
	Reason    string    `json:"reason" binding:"max=255"`
}
