package model

import (
	"time"

	"github.com/google/uuid"
)

// IntakeValidityPeriod is how long a completed intake profile remains
// valid before the client must renew it.
const IntakeValidityPeriod = 365 * 24 * time.Hour

// IntakeProfile records a client's intake form and disclaimer
// acknowledgment. A booking cannot be confirmed without a current one.
type IntakeProfile struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	FullName              string     `db:"full_name" json:"full_name"`
	Email                 string     `db:"email" json:"email"`
	Phone                 string     `db:"phone" json:"phone"`
	EmergencyContactName  string     `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone string     `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	ExperienceLevel       string     `db:"experience_level" json:"experience_level"`
	Goals                 string     `db:"goals" json:"goals"`
	Preferences           string     `db:"preferences" json:"preferences"`
	ConsentBooking        bool       `db:"consent_booking" json:"consent_booking"`
	ConsentMarketing      bool       `db:"consent_marketing" json:"consent_marketing"`
	ConsentPrivacy        bool       `db:"consent_privacy" json:"consent_privacy"`
	DisclaimerVersion     string     `db:"disclaimer_version" json:"disclaimer_version"`
	Completed             bool       `db:"completed" json:"completed"`
	CompletedAt           *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ExpiresAt             *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	Expired               bool       `db:"expired" json:"expired"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// IsExpired honours both the explicit admin flag and elapsed time.
func (p *IntakeProfile) IsExpired(now time.Time) bool {
	if p.Expired {
		return true
	}
	return p.ExpiresAt != nil && now.After(*p.ExpiresAt)
}

// IsValidForBooking is the Consent Gate predicate: the profile is
// completed and not expired. Disclaimer version binding is advisory;
// publishing a new disclaimer does not retroactively expire profiles.
func (p *IntakeProfile) IsValidForBooking(now time.Time) bool {
	return p.Completed && !p.IsExpired(now)
}

// Disclaimer is a versioned consent text. Exactly one version is active.
// Content is opaque rich text to the scheduling core.
type Disclaimer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Version   string    `db:"version" json:"version"`
	Content   string    `db:"content" json:"content"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreateIntakeProfileRequest struct {
	FullName              string `json:"full_name" binding:"required,max=255"`
	Email                 string `json:"email" binding:"required,email"`
	Phone                 string `json:"phone" binding:"max=32"`
	EmergencyContactName  string `json:"emergency_contact_name" binding:"max=255"`
	EmergencyContactPhone string `json:"emergency_contact_phone" binding:"max=32"`
	ExperienceLevel       string `json:"experience_level" binding:"max=64"`
	Goals                 string `json:"goals" binding:"max=2000"`
	Preferences           string `json:"preferences" binding:"max=2000"`
	ConsentBooking        bool   `json:"consent_booking"`
	ConsentMarketing      bool   `json:"consent_marketing"`
	ConsentPrivacy        bool   `json:"consent_privacy"`
}

type CreateDisclaimerRequest struct {
	Version string `json:"version" binding:"required,max=32"`
	Content string `json:"content" binding:"required"`
}

// IntakeStatus is the public answer to "can this email book yet".
type IntakeStatus struct {
	Exists            bool       `json:"exists"`
	Completed         bool       `json:"completed"`
	ProfileID         *uuid.UUID `json:"profile_id,omitempty"`
	IsValidForBooking bool       `json:"is_valid_for_booking"`
}
