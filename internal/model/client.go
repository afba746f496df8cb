package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a client identity record, keyed by email and upserted when a
// booking is submitted.
type Client struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClientStats carries the per-client aggregates shown on the admin list.
// Totals come from booking price snapshots, so later price edits do not
// rewrite history.
type ClientStats struct {
	Client
	TotalBookings int        `db:"total_bookings" json:"total_bookings"`
	TotalSpent    float64    `db:"total_spent" json:"total_spent"`
	LastBooking   *time.Time `db:"last_booking" json:"last_booking,omitempty"`
}
