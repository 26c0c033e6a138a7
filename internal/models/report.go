package models

import (
	"time"

	"github.com/google/uuid"
)

// Report reasons
const (
	ReportReasonMisconduct            = "misconduct"
	ReportReasonInaccurateInfo        = "inaccurate_info"
	ReportReasonInappropriateBehavior = "inappropriate_behavior"
	ReportReasonOther                 = "other"
)

// Report statuses
const (
	ReportOpen        = "open"
	ReportUnderReview = "under_review"
	ReportResolved    = "resolved"
	ReportDismissed   = "dismissed"
)

// Moderation actions recorded on a report
const (
	ReportActionNone                = "none"
	ReportActionWarning             = "warning"
	ReportActionTemporarySuspension = "temporary_suspension"
	ReportActionVerificationRevoked = "verification_revoked"
)

// ValidReportReason reports whether reason is a known report reason.
func ValidReportReason(reason string) bool {
	switch reason {
	case ReportReasonMisconduct, ReportReasonInaccurateInfo,
		ReportReasonInappropriateBehavior, ReportReasonOther:
		return true
	}
	return false
}

// ValidReportStatus reports whether status is a known report status.
func ValidReportStatus(status string) bool {
	switch status {
	case ReportOpen, ReportUnderReview, ReportResolved, ReportDismissed:
		return true
	}
	return false
}

// ValidReportAction reports whether action is a known moderation action.
func ValidReportAction(action string) bool {
	switch action {
	case ReportActionNone, ReportActionWarning,
		ReportActionTemporarySuspension, ReportActionVerificationRevoked:
		return true
	}
	return false
}

// ActionStatusForPsychologist returns the psychologist verification status a
// moderation action forces, or "" when the action has no profile side effect.
func ActionStatusForPsychologist(action string) string {
	switch action {
	case ReportActionTemporarySuspension:
		return VerificationSuspended
	case ReportActionVerificationRevoked:
		return VerificationRejected
	}
	return ""
}

type ProfessionalReport struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ReporterID     uuid.UUID `json:"reporter_id"`
	PsychologistID uuid.UUID `json:"psychologist_id"`
	Reason         string    `json:"reason"`
	Details        string    `json:"details,omitempty"`
	Status         string    `json:"status"`
	ActionTaken    string    `json:"action_taken"`
}
