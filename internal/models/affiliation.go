package models

import (
	"time"

	"github.com/google/uuid"
)

// Therapist-clinic affiliation statuses. Rows are soft-removed, never deleted,
// so therapists keep visibility into their history.
const (
	AffiliationActive  = "active"
	AffiliationPending = "pending"
	AffiliationRemoved = "removed"
)

// ValidAffiliationStatus reports whether status is a known affiliation status.
func ValidAffiliationStatus(status string) bool {
	switch status {
	case AffiliationActive, AffiliationPending, AffiliationRemoved:
		return true
	}
	return false
}

type TherapistClinic struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PsychologistID uuid.UUID `json:"psychologist_id"`
	ClinicID       uuid.UUID `json:"clinic_id"`
	RoleLabel      string    `json:"role_label,omitempty"`
	IsPrimary      bool      `json:"is_primary"`
	Status         string    `json:"status"`
}
