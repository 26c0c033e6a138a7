package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTherapistApplicationTransitions(t *testing.T) {
	assert.True(t, CanTransitionApplication(ApplicationDraft, ApplicationPending))
	assert.True(t, CanTransitionApplication(ApplicationPending, ApplicationApproved))
	assert.True(t, CanTransitionApplication(ApplicationPending, ApplicationRejected))

	// Terminal states accept nothing
	assert.False(t, CanTransitionApplication(ApplicationApproved, ApplicationRejected))
	assert.False(t, CanTransitionApplication(ApplicationRejected, ApplicationPending))

	// No shortcuts
	assert.False(t, CanTransitionApplication(ApplicationDraft, ApplicationApproved))
	assert.False(t, CanTransitionApplication(ApplicationDraft, ApplicationRejected))
	assert.False(t, CanTransitionApplication(ApplicationPending, ApplicationDraft))
}

func TestClinicApplicationTransitions(t *testing.T) {
	assert.True(t, CanTransitionClinicApplication(ApplicationPending, ApplicationApproved))
	assert.True(t, CanTransitionClinicApplication(ApplicationPending, ApplicationRejected))

	assert.False(t, CanTransitionClinicApplication(ApplicationApproved, ApplicationRejected))
	assert.False(t, CanTransitionClinicApplication(ApplicationRejected, ApplicationApproved))
	assert.False(t, CanTransitionClinicApplication(ApplicationDraft, ApplicationPending))
}

func TestSelectCredentialMode(t *testing.T) {
	// (hasDocument, hasCredentialID, hasRenewalID)
	assert.Equal(t, CredentialModeNew, SelectCredentialMode(true, false, false))
	assert.Equal(t, CredentialModeRenewal, SelectCredentialMode(false, false, true))
	assert.Equal(t, CredentialModeResubmit, SelectCredentialMode(true, true, false))

	// Empty and ambiguous combinations
	assert.Equal(t, CredentialModeInvalid, SelectCredentialMode(false, false, false))
	assert.Equal(t, CredentialModeInvalid, SelectCredentialMode(false, true, false))
	assert.Equal(t, CredentialModeInvalid, SelectCredentialMode(true, false, true))
	assert.Equal(t, CredentialModeInvalid, SelectCredentialMode(false, true, true))
	assert.Equal(t, CredentialModeInvalid, SelectCredentialMode(true, true, true))
}

func TestCredentialDisplayStatus(t *testing.T) {
	assert.Equal(t, "pending_review", CredentialDisplayStatus(CredentialPending))
	assert.Equal(t, CredentialVerified, CredentialDisplayStatus(CredentialVerified))
	assert.Equal(t, CredentialRejected, CredentialDisplayStatus(CredentialRejected))
	assert.Equal(t, CredentialExpired, CredentialDisplayStatus(CredentialExpired))
}

func TestActionStatusForPsychologist(t *testing.T) {
	assert.Equal(t, VerificationSuspended, ActionStatusForPsychologist(ReportActionTemporarySuspension))
	assert.Equal(t, VerificationRejected, ActionStatusForPsychologist(ReportActionVerificationRevoked))
	assert.Equal(t, "", ActionStatusForPsychologist(ReportActionNone))
	assert.Equal(t, "", ActionStatusForPsychologist(ReportActionWarning))
}

func TestNextStreak(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	// First ever completion starts at 1
	assert.Equal(t, 1, NextStreak(0, nil, day(0)))

	yesterday := day(0)
	assert.Equal(t, 4, NextStreak(3, &yesterday, day(1)))

	// Same day keeps the streak, regardless of the hour
	sameDay := day(0)
	later := time.Date(2026, 3, 1, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, 3, NextStreak(3, &sameDay, later))

	// A gap resets to 1
	old := day(0)
	assert.Equal(t, 1, NextStreak(7, &old, day(3)))

	// Completions logged out of order also reset
	future := day(2)
	assert.Equal(t, 1, NextStreak(5, &future, day(1)))

	// Local calendar days count, not 24h UTC buckets: 23:30 one evening to
	// 00:30 the next morning in UTC+10 is consecutive days
	brisbane := time.FixedZone("AEST", 10*60*60)
	lateNight := time.Date(2026, 3, 1, 23, 30, 0, 0, brisbane)
	earlyMorning := time.Date(2026, 3, 2, 0, 30, 0, 0, brisbane)
	assert.Equal(t, 3, NextStreak(2, &lateNight, earlyMorning))
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidRole(RoleParent))
	assert.True(t, ValidRole(RoleClinicAdmin))
	assert.False(t, ValidRole("superuser"))

	assert.True(t, ValidEmotion(EmotionCalm))
	assert.False(t, ValidEmotion("bored"))

	assert.True(t, ValidPsychologistStatus(VerificationSuspended))
	assert.False(t, ValidPsychologistStatus("paused"))

	assert.True(t, ValidCredentialStatus(CredentialExpired))
	assert.False(t, ValidCredentialStatus("pending_review"))

	assert.True(t, ValidAffiliationStatus(AffiliationRemoved))
	assert.False(t, ValidAffiliationStatus("inactive"))

	assert.True(t, ValidReportReason(ReportReasonMisconduct))
	assert.False(t, ValidReportReason("spam"))
	assert.True(t, ValidReportStatus(ReportUnderReview))
	assert.False(t, ValidReportStatus("closed"))
	assert.True(t, ValidReportAction(ReportActionWarning))
	assert.False(t, ValidReportAction("ban"))
}
