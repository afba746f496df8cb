package model

import (
	"time"

	"github.com/google/uuid"
)

// Service is an offered appointment type. Duration is the sole driver of
// slot length; only active services are offered to new bookings.
type Service struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Price           float64   `db:"price" json:"price"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateServiceRequest struct {
	Name            string  `json:"name" binding:"required,max=255"`
	Description     string  `json:"description" binding:"max=2000"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,gt=0"`
	Price           float64 `json:"price" binding:"gte=0"`
	Active          *bool   `json:"active"`
}

type UpdateServiceRequest struct {
	Name            *string  `json:"name" binding:"omitempty,max=255"`
	Description     *string  `json:"description" binding:"omitempty,max=2000"`
	DurationMinutes *int     `json:"duration_minutes" binding:"omitempty,gt=0"`
	Price           *float64 `json:"price" binding:"omitempty,gte=0"`
	Active          *bool    `json:"active"`
}
