package models

import (
	"time"

	"github.com/google/uuid"
)

// Psychologist verification statuses
const (
	VerificationPending   = "pending"
	VerificationVerified  = "verified"
	VerificationRejected  = "rejected"
	VerificationSuspended = "suspended"
	VerificationExpired   = "expired"
)

// ValidPsychologistStatus reports whether status is a known psychologist
// verification status.
func ValidPsychologistStatus(status string) bool {
	switch status {
	case VerificationPending, VerificationVerified, VerificationRejected,
		VerificationSuspended, VerificationExpired:
		return true
	}
	return false
}

type Psychologist struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID            *uuid.UUID `json:"user_id,omitempty"`
	ProfessionalName  string     `json:"professional_name"`
	Email             string     `json:"email"`
	Bio               string     `json:"bio,omitempty"`
	Specialties       string     `json:"specialties,omitempty"`
	YearsOfExperience int        `json:"years_of_experience"`

	VerificationStatus       string     `json:"verification_status"`
	VerifiedAt               *time.Time `json:"verified_at,omitempty"`
	VerificationExpiresAt    *time.Time `json:"verification_expires_at,omitempty"`
	LastVerificationReviewAt *time.Time `json:"last_verification_review_at,omitempty"`

	RatingAvg   float64 `json:"rating_avg"`
	RatingCount int     `json:"rating_count"`
	IsActive    bool    `json:"is_active"`
}

type Review struct {
	ID             uuid.UUID `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	ReviewerID     uuid.UUID `json:"reviewer_id"`
	PsychologistID uuid.UUID `json:"psychologist_id"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment,omitempty"`
}
