package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential verification statuses (stored values)
const (
	CredentialPending  = "pending"
	CredentialVerified = "verified"
	CredentialRejected = "rejected"
	CredentialExpired  = "expired"
)

// ValidCredentialStatus reports whether status is a known credential status.
func ValidCredentialStatus(status string) bool {
	switch status {
	case CredentialPending, CredentialVerified, CredentialRejected, CredentialExpired:
		return true
	}
	return false
}

// CredentialDisplayStatus maps a stored credential status to the string
// exposed in API responses. Stored "pending" reads as "pending_review".
func CredentialDisplayStatus(status string) string {
	if status == CredentialPending {
		return "pending_review"
	}
	return status
}

type ProfessionalCredential struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PsychologistID     uuid.UUID  `json:"psychologist_id"`
	Title              string     `json:"title"`
	Issuer             string     `json:"issuer,omitempty"`
	DocumentURL        string     `json:"document_url"`
	VerificationStatus string     `json:"verification_status"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	RenewalRequestedAt *time.Time `json:"renewal_requested_at,omitempty"`
	ReviewedBy         *uuid.UUID `json:"reviewed_by,omitempty"`
}

// Credential upload modes, selected by which fields are present in the
// request body. Exactly one must apply.
const (
	CredentialModeNew      = "new"
	CredentialModeRenewal  = "renewal"
	CredentialModeResubmit = "resubmit"
	CredentialModeInvalid  = "invalid"
)

// SelectCredentialMode decides which of the three upload modes a request
// selects: a brand-new document, a renewal request against an existing
// credential, or a document resubmission against an existing credential.
// Ambiguous or empty combinations are invalid.
func SelectCredentialMode(hasDocument, hasCredentialID, hasRenewalID bool) string {
	switch {
	case hasRenewalID && !hasDocument && !hasCredentialID:
		return CredentialModeRenewal
	case hasDocument && hasCredentialID && !hasRenewalID:
		return CredentialModeResubmit
	case hasDocument && !hasCredentialID && !hasRenewalID:
		return CredentialModeNew
	}
	return CredentialModeInvalid
}
