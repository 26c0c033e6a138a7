package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/middleware"
	"github.com/nurtura-health/nurtura-backend/internal/models"
	"github.com/nurtura-health/nurtura-backend/internal/services"
)

const therapistApplicationColumns = `
	id, created_at, updated_at, user_id, status, professional_name, email,
	COALESCE(bio, ''), COALESCE(specialties, ''), years_of_experience, credentials,
	submitted_at, reviewed_at, reviewed_by, COALESCE(rejection_reason, ''), psychologist_id`

func scanTherapistApplication(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.TherapistApplication, error) {
	var app models.TherapistApplication
	var credentialsJSON []byte
	err := scanner.Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt, &app.UserID, &app.Status,
		&app.ProfessionalName, &app.Email, &app.Bio, &app.Specialties, &app.YearsOfExperience,
		&credentialsJSON, &app.SubmittedAt, &app.ReviewedAt, &app.ReviewedBy,
		&app.RejectionReason, &app.PsychologistID)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(credentialsJSON, &app.Credentials); err != nil {
		app.Credentials = []models.ApplicationCredential{}
	}
	return &app, nil
}

func loadApplicationAffiliations(applicationID uuid.UUID) ([]models.ClinicAffiliationInput, error) {
	rows, err := database.PostgresDB.Query(`
		SELECT clinic_id, COALESCE(role_label, ''), is_primary
		FROM therapist_application_clinics
		WHERE application_id = $1
	`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	affiliations := []models.ClinicAffiliationInput{}
	for rows.Next() {
		var a models.ClinicAffiliationInput
		if err := rows.Scan(&a.ClinicID, &a.RoleLabel, &a.IsPrimary); err != nil {
			return nil, err
		}
		affiliations = append(affiliations, a)
	}
	return affiliations, nil
}

type therapistApplicationRequest struct {
	ProfessionalName   string                          `json:"professional_name"`
	Email              string                          `json:"email"`
	Bio                string                          `json:"bio"`
	Specialties        string                          `json:"specialties"`
	YearsOfExperience  int                             `json:"years_of_experience"`
	Credentials        []models.ApplicationCredential  `json:"credentials"`
	ClinicAffiliations []models.ClinicAffiliationInput `json:"clinic_affiliations"`
}

// UpsertTherapistApplication creates or updates the caller's draft
// application. A user has at most one application; editing is only possible
// while it is still a draft.
func UpsertTherapistApplication(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	var req therapistApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.ProfessionalName = strings.TrimSpace(req.ProfessionalName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.ProfessionalName == "" {
		writeError(w, http.StatusBadRequest, "Professional name is required")
		return
	}
	if !ValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "A valid email is required")
		return
	}
	if req.YearsOfExperience < 0 {
		writeError(w, http.StatusBadRequest, "Years of experience cannot be negative")
		return
	}
	if req.Credentials == nil {
		req.Credentials = []models.ApplicationCredential{}
	}
	credentialsJSON, err := json.Marshal(req.Credentials)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid credentials payload")
		return
	}

	var existingID uuid.UUID
	var existingStatus string
	err = database.PostgresDB.QueryRow(`
		SELECT id, status FROM therapist_applications WHERE user_id = $1
	`, userID).Scan(&existingID, &existingStatus)
	if err != nil && err != sql.ErrNoRows {
		writeDBError(w, err)
		return
	}
	if err == nil && existingStatus != models.ApplicationDraft {
		writeError(w, http.StatusBadRequest, "Application has already been submitted")
		return
	}
	creating := err == sql.ErrNoRows

	tx, err := database.PostgresDB.Begin()
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer tx.Rollback()

	var applicationID uuid.UUID
	if creating {
		applicationID = uuid.New()
		_, err = tx.Exec(`
			INSERT INTO therapist_applications
				(id, user_id, status, professional_name, email, bio, specialties, years_of_experience, credentials)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)
		`, applicationID, userID, models.ApplicationDraft, req.ProfessionalName, req.Email,
			req.Bio, req.Specialties, req.YearsOfExperience, credentialsJSON)
		if err != nil {
			writeDBError(w, err)
			return
		}
	} else {
		applicationID = existingID
		result, uerr := tx.Exec(`
			UPDATE therapist_applications
			SET professional_name = $1, email = $2, bio = NULLIF($3, ''),
			    specialties = NULLIF($4, ''), years_of_experience = $5,
			    credentials = $6, updated_at = NOW()
			WHERE id = $7 AND status = $8
		`, req.ProfessionalName, req.Email, req.Bio, req.Specialties,
			req.YearsOfExperience, credentialsJSON, applicationID, models.ApplicationDraft)
		if uerr != nil {
			writeDBError(w, uerr)
			return
		}
		// A concurrent submit can flip the status after the pre-check above;
		// the guarded UPDATE matching nothing means the draft is gone
		if affected, _ := result.RowsAffected(); affected == 0 {
			writeError(w, http.StatusBadRequest, "Application has already been submitted")
			return
		}
	}

	// Declared affiliations are replaced wholesale, but only when the request
	// carried the field at all. A nil slice means the caller never sent
	// clinic_affiliations; an empty array clears them.
	if req.ClinicAffiliations != nil {
		if _, err := tx.Exec(`DELETE FROM therapist_application_clinics WHERE application_id = $1`, applicationID); err != nil {
			writeDBError(w, err)
			return
		}
		for _, a := range req.ClinicAffiliations {
			_, err = tx.Exec(`
				INSERT INTO therapist_application_clinics (application_id, clinic_id, role_label, is_primary)
				VALUES ($1, $2, NULLIF($3, ''), $4)
			`, applicationID, a.ClinicID, a.RoleLabel, a.IsPrimary)
			if err != nil {
				writeDBError(w, err)
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		writeDBError(w, err)
		return
	}

	_ = services.RecordTherapistAction(r.Context(), userID, "application_saved",
		"therapist_application", applicationID.String(), nil)

	GetOwnTherapistApplication(w, r)
}

// GetOwnTherapistApplication returns the caller's application, if any
func GetOwnTherapistApplication(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	row := database.PostgresDB.QueryRow(`SELECT `+therapistApplicationColumns+`
		FROM therapist_applications WHERE user_id = $1`, userID)
	app, err := scanTherapistApplication(row)
	if err != nil {
		writeDBError(w, err)
		return
	}

	affiliations, err := loadApplicationAffiliations(app.ID)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"application":         app,
		"clinic_affiliations": affiliations,
	})
}

// SubmitTherapistApplication moves the caller's draft to pending
func SubmitTherapistApplication(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())

	result, err := database.PostgresDB.Exec(`
		UPDATE therapist_applications
		SET status = $1, submitted_at = NOW(), updated_at = NOW()
		WHERE user_id = $2 AND status = $3
	`, models.ApplicationPending, userID, models.ApplicationDraft)
	if err != nil {
		writeDBError(w, err)
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		var status string
		err := database.PostgresDB.QueryRow(`
			SELECT status FROM therapist_applications WHERE user_id = $1
		`, userID).Scan(&status)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "No application found")
			return
		}
		if err != nil {
			writeDBError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "Application is not in draft state")
		return
	}

	_ = services.RecordTherapistAction(r.Context(), userID, "application_submitted",
		"therapist_application", userID.String(), nil)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Application submitted for review",
	})
}

// ListTherapistApplications is the admin queue, optionally filtered by status
func ListTherapistApplications(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !validTherapistApplicationStatus(status) {
		writeError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	query := `SELECT ` + therapistApplicationColumns + ` FROM therapist_applications`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at DESC NULLS LAST, created_at DESC LIMIT 100`

	rows, err := database.PostgresDB.Query(query, args...)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	applications := []models.TherapistApplication{}
	for rows.Next() {
		app, err := scanTherapistApplication(rows)
		if err != nil {
			writeDBError(w, err)
			return
		}
		applications = append(applications, *app)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"applications": applications,
		"count":        len(applications),
	})
}

func validTherapistApplicationStatus(status string) bool {
	switch status {
	case models.ApplicationDraft, models.ApplicationPending,
		models.ApplicationApproved, models.ApplicationRejected:
		return true
	}
	return false
}

// GetTherapistApplication returns one application for admin review
func GetTherapistApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	row := database.PostgresDB.QueryRow(`SELECT `+therapistApplicationColumns+`
		FROM therapist_applications WHERE id = $1`, applicationID)
	app, err := scanTherapistApplication(row)
	if err != nil {
		writeDBError(w, err)
		return
	}

	affiliations, err := loadApplicationAffiliations(app.ID)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"application":         app,
		"clinic_affiliations": affiliations,
	})
}

// ReviewTherapistApplication approves or rejects a pending application.
// The status flip is a conditional update so two concurrent reviews cannot
// both win; approval creates the psychologist profile, its credentials and
// the declared clinic affiliations in the same transaction.
func ReviewTherapistApplication(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.UserIDFromContext(r.Context())
	applicationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var req struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.CanTransitionApplication(models.ApplicationPending, req.Status) {
		writeError(w, http.StatusBadRequest, "Status must be approved or rejected")
		return
	}
	req.RejectionReason = strings.TrimSpace(req.RejectionReason)
	if req.Status == models.ApplicationRejected && req.RejectionReason == "" {
		writeError(w, http.StatusBadRequest, "A rejection reason is required")
		return
	}
	if len(req.RejectionReason) > 2000 {
		writeError(w, http.StatusBadRequest, "Rejection reason must be 2000 characters or fewer")
		return
	}

	tx, err := database.PostgresDB.Begin()
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer tx.Rollback()

	// Pending is the only reviewable state; the WHERE clause decides the race
	result, err := tx.Exec(`
		UPDATE therapist_applications
		SET status = $1, reviewed_at = NOW(), reviewed_by = $2,
		    rejection_reason = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $4 AND status = $5
	`, req.Status, adminID, req.RejectionReason, applicationID, models.ApplicationPending)
	if err != nil {
		writeDBError(w, err)
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		var exists bool
		err := tx.QueryRow(`SELECT TRUE FROM therapist_applications WHERE id = $1`, applicationID).Scan(&exists)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Application not found")
			return
		}
		if err != nil {
			writeDBError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "Application is not pending review")
		return
	}

	var psychologistID *uuid.UUID
	if req.Status == models.ApplicationApproved {
		row := tx.QueryRow(`SELECT `+therapistApplicationColumns+`
			FROM therapist_applications WHERE id = $1`, applicationID)
		app, err := scanTherapistApplication(row)
		if err != nil {
			writeDBError(w, err)
			return
		}

		newID := uuid.New()
		now := time.Now().UTC()
		_, err = tx.Exec(`
			INSERT INTO psychologists
				(id, user_id, professional_name, email, bio, specialties, years_of_experience,
				 verification_status, verified_at, is_active)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, TRUE)
		`, newID, app.UserID, app.ProfessionalName, app.Email, app.Bio, app.Specialties,
			app.YearsOfExperience, models.VerificationVerified, now)
		if err != nil {
			writeDBError(w, err)
			return
		}

		for _, cred := range app.Credentials {
			var expiresAt *time.Time
			if cred.ExpiresAt != "" {
				if parsed, perr := time.Parse("2006-01-02", cred.ExpiresAt); perr == nil {
					expiresAt = &parsed
				}
			}
			_, err = tx.Exec(`
				INSERT INTO professional_credentials
					(psychologist_id, title, issuer, document_url, verification_status, expires_at)
				VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
			`, newID, cred.Title, cred.Issuer, cred.DocumentURL, models.CredentialPending, expiresAt)
			if err != nil {
				writeDBError(w, err)
				return
			}
		}

		// Declared affiliations become active roster rows
		_, err = tx.Exec(`
			INSERT INTO therapist_clinics (psychologist_id, clinic_id, role_label, is_primary, status)
			SELECT $1, clinic_id, role_label, is_primary, $2
			FROM therapist_application_clinics
			WHERE application_id = $3
			ON CONFLICT (psychologist_id, clinic_id) DO UPDATE
			SET role_label = EXCLUDED.role_label, is_primary = EXCLUDED.is_primary,
			    status = EXCLUDED.status, updated_at = NOW()
		`, newID, models.AffiliationActive, applicationID)
		if err != nil {
			writeDBError(w, err)
			return
		}

		_, err = tx.Exec(`
			UPDATE therapist_applications SET psychologist_id = $1 WHERE id = $2
		`, newID, applicationID)
		if err != nil {
			writeDBError(w, err)
			return
		}

		_, err = tx.Exec(`
			UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2
		`, models.RoleTherapist, app.UserID)
		if err != nil {
			writeDBError(w, err)
			return
		}

		psychologistID = &newID
	}

	if err := tx.Commit(); err != nil {
		writeDBError(w, err)
		return
	}

	details := bson.M{"status": req.Status}
	if psychologistID != nil {
		details["psychologist_id"] = psychologistID.String()
	}
	if req.RejectionReason != "" {
		details["rejection_reason"] = req.RejectionReason
	}
	_ = services.RecordAdminAction(r.Context(), adminID, "therapist_application_reviewed",
		"therapist_application", applicationID.String(), details)

	services.InvalidateDirectoryCache()

	response := map[string]interface{}{
		"success": true,
		"message": "Application " + req.Status,
	}
	if psychologistID != nil {
		response["psychologist_id"] = psychologistID.String()
	}
	writeJSON(w, http.StatusOK, response)
}
