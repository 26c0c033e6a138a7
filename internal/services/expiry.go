package services

import (
	"database/sql"
	"log"
	"time"

	"github.com/nurtura-health/nurtura-backend/internal/models"
)

// ExpiryResult summarizes one expiry scan.
type ExpiryResult struct {
	PsychologistsExpired  int
	PsychologistsExpiring int
	CredentialsExpired    int
	CredentialsExpiring   int
	Failures              int
}

// RunExpiryScan finds verified psychologists and credentials whose expiry has
// passed and, when apply is true, transitions them to expired. Rows expiring
// within the warning window are reported only. Each row is its own guarded
// update so a failure never aborts the scan, and re-running the scan is a
// no-op for rows already expired.
func RunExpiryScan(db *sql.DB, window time.Duration, apply bool) (*ExpiryResult, error) {
	now := time.Now()
	warnUntil := now.Add(window)
	result := &ExpiryResult{}

	// Psychologists past their verification expiry
	rows, err := db.Query(`
		SELECT id, professional_name, verification_expires_at
		FROM psychologists
		WHERE verification_status = $1
		  AND verification_expires_at IS NOT NULL
		  AND verification_expires_at < $2
	`, models.VerificationVerified, now)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id, name string
		var expiresAt time.Time
		if err := rows.Scan(&id, &name, &expiresAt); err != nil {
			log.Printf("expiry: failed to scan psychologist row: %v", err)
			result.Failures++
			continue
		}
		result.PsychologistsExpired++
		if !apply {
			log.Printf("expiry: psychologist %s (%s) expired %s (dry run)", id, name, expiresAt.Format(time.RFC3339))
			continue
		}
		// Guarded per-row update keeps the transition monotonic and the scan
		// idempotent even if two copies run at once
		_, err := db.Exec(`
			UPDATE psychologists
			SET verification_status = $1, updated_at = NOW()
			WHERE id = $2 AND verification_status = $3 AND verification_expires_at < $4
		`, models.VerificationExpired, id, models.VerificationVerified, now)
		if err != nil {
			log.Printf("expiry: failed to expire psychologist %s: %v", id, err)
			result.Failures++
			continue
		}
		log.Printf("expiry: psychologist %s (%s) → expired", id, name)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return result, err
	}
	rows.Close()

	// Psychologists expiring within the warning window (report only)
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM psychologists
		WHERE verification_status = $1
		  AND verification_expires_at IS NOT NULL
		  AND verification_expires_at >= $2 AND verification_expires_at < $3
	`, models.VerificationVerified, now, warnUntil).Scan(&result.PsychologistsExpiring); err != nil {
		return result, err
	}

	// Credentials past their expiry
	credRows, err := db.Query(`
		SELECT id, psychologist_id, expires_at
		FROM professional_credentials
		WHERE verification_status = $1
		  AND expires_at IS NOT NULL
		  AND expires_at < $2
	`, models.CredentialVerified, now)
	if err != nil {
		return result, err
	}
	for credRows.Next() {
		var id, psychologistID string
		var expiresAt time.Time
		if err := credRows.Scan(&id, &psychologistID, &expiresAt); err != nil {
			log.Printf("expiry: failed to scan credential row: %v", err)
			result.Failures++
			continue
		}
		result.CredentialsExpired++
		if !apply {
			log.Printf("expiry: credential %s (psychologist %s) expired %s (dry run)", id, psychologistID, expiresAt.Format(time.RFC3339))
			continue
		}
		_, err := db.Exec(`
			UPDATE professional_credentials
			SET verification_status = $1, updated_at = NOW()
			WHERE id = $2 AND verification_status = $3 AND expires_at < $4
		`, models.CredentialExpired, id, models.CredentialVerified, now)
		if err != nil {
			log.Printf("expiry: failed to expire credential %s: %v", id, err)
			result.Failures++
			continue
		}
		log.Printf("expiry: credential %s → expired", id)
	}
	if err := credRows.Err(); err != nil {
		credRows.Close()
		return result, err
	}
	credRows.Close()

	// Credentials expiring within the warning window (report only)
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM professional_credentials
		WHERE verification_status = $1
		  AND expires_at IS NOT NULL
		  AND expires_at >= $2 AND expires_at < $3
	`, models.CredentialVerified, now, warnUntil).Scan(&result.CredentialsExpiring); err != nil {
		return result, err
	}

	return result, nil
}
