package models

import (
	"time"

	"github.com/google/uuid"
)

// Therapist application statuses
const (
	ApplicationDraft    = "draft"
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// therapistApplicationTransitions is the closed transition table for
// therapist applications. approved and rejected are terminal.
var therapistApplicationTransitions = map[string][]string{
	ApplicationDraft:   {ApplicationPending},
	ApplicationPending: {ApplicationApproved, ApplicationRejected},
}

// CanTransitionApplication reports whether a therapist application may move
// from one status to another.
func CanTransitionApplication(from, to string) bool {
	for _, allowed := range therapistApplicationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// clinicApplicationTransitions: clinic applications are born pending and are
// terminal once reviewed.
var clinicApplicationTransitions = map[string][]string{
	ApplicationPending: {ApplicationApproved, ApplicationRejected},
}

// CanTransitionClinicApplication reports whether a clinic application may
// move from one status to another.
func CanTransitionClinicApplication(from, to string) bool {
	for _, allowed := range clinicApplicationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ApplicationCredential is one denormalized credential entry on a therapist
// application, stored as JSONB until approval.
type ApplicationCredential struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer,omitempty"`
	DocumentURL string `json:"document_url"`
	ExpiresAt   string `json:"expires_at,omitempty"`
}

// ClinicAffiliationInput is a clinic affiliation declared on a therapist
// application; on submit these are replaced wholesale.
type ClinicAffiliationInput struct {
	ClinicID  uuid.UUID `json:"clinic_id"`
	RoleLabel string    `json:"role_label,omitempty"`
	IsPrimary bool      `json:"is_primary"`
}

type TherapistApplication struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID            uuid.UUID               `json:"user_id"`
	Status            string                  `json:"status"`
	ProfessionalName  string                  `json:"professional_name"`
	Email             string                  `json:"email"`
	Bio               string                  `json:"bio,omitempty"`
	Specialties       string                  `json:"specialties,omitempty"`
	YearsOfExperience int                     `json:"years_of_experience"`
	Credentials       []ApplicationCredential `json:"credentials"`

	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	PsychologistID  *uuid.UUID `json:"psychologist_id,omitempty"`
}

type ClinicApplication struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ClinicName       string `json:"clinic_name"`
	Country          string `json:"country"`
	City             string `json:"city,omitempty"`
	ContactEmail     string `json:"contact_email"`
	Description      string `json:"description,omitempty"`
	DocumentFilename string `json:"-"` // Storage name, never exposed

	Status          string     `json:"status"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      *uuid.UUID `json:"reviewed_by,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ClinicID        *uuid.UUID `json:"clinic_id,omitempty"`
}
