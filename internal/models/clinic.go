package models

import (
	"time"

	"github.com/google/uuid"
)

// Clinic verification statuses. There is no stored rejected state: a rejected
// clinic application never becomes a clinic row.
const (
	ClinicPending  = "pending"
	ClinicVerified = "verified"
)

type Clinic struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Country      string `json:"country"`
	City         string `json:"city,omitempty"`
	ContactEmail string `json:"contact_email"`
	Description  string `json:"description,omitempty"`

	VerificationStatus string     `json:"verification_status"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	ReviewedBy         *uuid.UUID `json:"reviewed_by,omitempty"`
	IsActive           bool       `json:"is_active"`
}

type ClinicAdmin struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    uuid.UUID `json:"user_id"`
	ClinicID  uuid.UUID `json:"clinic_id"`
}

type ClinicInvite struct {
	ID         uuid.UUID  `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	ClinicID   uuid.UUID  `json:"clinic_id"`
	Email      string     `json:"email"`
	Token      string     `json:"-"` // Only ever sent to the invitee
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}
