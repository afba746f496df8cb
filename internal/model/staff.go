package model

import (
	"time"

	"github.com/google/uuid"
)

// Staff is a bookable staff member. Only active staff, and only for
// services in their offered set, may be booked.
type Staff struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	Name       string      `db:"name" json:"name"`
	Email      string      `db:"email" json:"email"`
	Phone      string      `db:"phone" json:"phone"`
	Active     bool        `db:"active" json:"active"`
	ServiceIDs []uuid.UUID `db:"-" json:"service_ids"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// Offers reports whether the staff member offers the given service.
func (s *Staff) Offers(serviceID uuid.UUID) bool {
	for _, id := range s.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

type CreateStaffRequest struct {
	Name       string      `json:"name" binding:"required,max=255"`
	Email      string      `json:"email" binding:"required,email"`
	Phone      string      `json:"phone" binding:"max=32"`
	Active     *bool       `json:"active"`
	ServiceIDs []uuid.UUID `json:"service_ids"`
}

type UpdateStaffRequest struct {
	Name       *string      `json:"name" binding:"omitempty,max=255"`
	Email      *string      `json:"email" binding:"omitempty,email"`
	Phone      *string      `json:"phone" binding:"omitempty,max=32"`
	Active     *bool        `json:"active"`
	ServiceIDs *[]uuid.UUID `json:"service_ids"`
}
