package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Blocks reports whether a booking in this status occupies its interval
// for conflict purposes. Cancelled and completed bookings free their slot.
func (s BookingStatus) Blocks() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// Booking is one confirmed or pending appointment. EndTime is derived
// from the service duration at creation time and never set independently.
// ServiceName and Price are snapshots taken at creation so revenue
// reporting stays accurate when the live Service row is edited later.
type Booking struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	ServiceID   uuid.UUID     `db:"service_id" json:"service_id"`
	StaffID     uuid.UUID     `db:"staff_id" json:"staff_id"`
	ClientID    uuid.UUID     `db:"client_id" json:"client_id"`
	ServiceName string        `db:"service_name" json:"service_name"`
	Price       float64       `db:"price" json:"price"`
	StartTime   time.Time     `db:"start_time" json:"start_time"`
	EndTime     time.Time     `db:"end_time" json:"end_time"`
	Status      BookingStatus `db:"status" json:"status"`
	Notes       string        `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

type CreateBookingRequest struct {
	ServiceID   uuid.UUID `json:"service_id" binding:"required"`
	StaffID     uuid.UUID `json:"staff_id" binding:"required"`
	Date        string    `json:"date" binding:"required,dateonly"`
	Time        string    `json:"time" binding:"required,timeofday"`
	ClientName  string    `json:"client_name" binding:"required,max=255"`
	ClientEmail string    `json:"client_email" binding:"required,email"`
	ClientPhone string    `json:"client_phone" binding:"max=32"`
	Notes       string    `json:"notes" binding:"max=1000"`
}

type BookingFilters struct {
	StaffID   uuid.UUID
	ServiceID uuid.UUID
	Status    BookingStatus
	StartDate time.Time
	EndDate   time.Time
	Pagination
}
