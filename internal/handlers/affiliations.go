package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/middleware"
	"github.com/nurtura-health/nurtura-backend/internal/models"
)

const affiliationColumns = `
	id, created_at, updated_at, psychologist_id, clinic_id,
	COALESCE(role_label, ''), is_primary, status`

func scanAffiliation(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.TherapistClinic, error) {
	var a models.TherapistClinic
	err := scanner.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.PsychologistID, &a.ClinicID,
		&a.RoleLabel, &a.IsPrimary, &a.Status)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// userManagesClinic reports whether a user has clinic-admin rights over a
// clinic. Platform admins pass implicitly via role middleware, not here.
func userManagesClinic(userID, clinicID uuid.UUID) (bool, error) {
	var exists bool
	err := database.PostgresDB.QueryRow(`
		SELECT TRUE FROM clinic_admins WHERE user_id = $1 AND clinic_id = $2
	`, userID, clinicID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AddAffiliation attaches a psychologist to the clinic the caller manages.
// Re-adding an existing pair updates it in place and reactivates it, so the
// operation is safe to retry.
func AddAffiliation(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	clinicID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clinic ID")
		return
	}

	manages, err := userManagesClinic(userID, clinicID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	if !manages {
		writeError(w, http.StatusForbidden, "You do not manage this clinic")
		return
	}

	var req struct {
		PsychologistID string `json:"psychologist_id"`
		RoleLabel      string `json:"role_label"`
		IsPrimary      bool   `json:"is_primary"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	psychologistID, err := uuid.Parse(req.PsychologistID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid psychologist ID")
		return
	}

	row := database.PostgresDB.QueryRow(`
		INSERT INTO therapist_clinics (psychologist_id, clinic_id, role_label, is_primary, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		ON CONFLICT (psychologist_id, clinic_id) DO UPDATE
		SET role_label = EXCLUDED.role_label, is_primary = EXCLUDED.is_primary,
		    status = EXCLUDED.status, updated_at = NOW()
		RETURNING `+affiliationColumns, psychologistID, clinicID, req.RoleLabel,
		req.IsPrimary, models.AffiliationActive)
	affiliation, err := scanAffiliation(row)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"affiliation": affiliation,
	})
}

// RemoveAffiliation soft-removes a psychologist from a clinic roster
func RemoveAffiliation(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	clinicID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clinic ID")
		return
	}
	psychologistID, err := uuid.Parse(chi.URLParam(r, "psychologistID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid psychologist ID")
		return
	}

	manages, err := userManagesClinic(userID, clinicID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	if !manages {
		writeError(w, http.StatusForbidden, "You do not manage this clinic")
		return
	}

	result, err := database.PostgresDB.Exec(`
		UPDATE therapist_clinics
		SET status = $1, updated_at = NOW()
		WHERE clinic_id = $2 AND psychologist_id = $3
	`, models.AffiliationRemoved, clinicID, psychologistID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		writeError(w, http.StatusNotFound, "Affiliation not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Affiliation removed",
	})
}

// GetOwnAffiliations lists the caller's clinic affiliations, including
// removed ones so therapists can see their history
func GetOwnAffiliations(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	psychologistID, err := psychologistIDForUser(userID)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusForbidden, "No professional profile for this account")
		return
	}
	if err != nil {
		writeDBError(w, err)
		return
	}

	rows, err := database.PostgresDB.Query(`SELECT `+affiliationColumns+`
		FROM therapist_clinics
		WHERE psychologist_id = $1
		ORDER BY created_at DESC`, psychologistID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	affiliations := []models.TherapistClinic{}
	for rows.Next() {
		a, err := scanAffiliation(rows)
		if err != nil {
			writeDBError(w, err)
			return
		}
		affiliations = append(affiliations, *a)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"affiliations": affiliations,
		"count":        len(affiliations),
	})
}

// GetClinicRoster lists a clinic's active affiliations for its admins
func GetClinicRoster(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	clinicID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clinic ID")
		return
	}

	manages, err := userManagesClinic(userID, clinicID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	if !manages {
		writeError(w, http.StatusForbidden, "You do not manage this clinic")
		return
	}

	rows, err := database.PostgresDB.Query(`SELECT `+affiliationColumns+`
		FROM therapist_clinics
		WHERE clinic_id = $1 AND status = $2
		ORDER BY is_primary DESC, created_at ASC`, clinicID, models.AffiliationActive)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	affiliations := []models.TherapistClinic{}
	for rows.Next() {
		a, err := scanAffiliation(rows)
		if err != nil {
			writeDBError(w, err)
			return
		}
		affiliations = append(affiliations, *a)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"affiliations": affiliations,
		"count":        len(affiliations),
	})
}

// UpdateClinicProfile lets a clinic admin edit the clinic's public details
func UpdateClinicProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	clinicID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clinic ID")
		return
	}

	manages, err := userManagesClinic(userID, clinicID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	if !manages {
		writeError(w, http.StatusForbidden, "You do not manage this clinic")
		return
	}

	var req struct {
		City         *string `json:"city"`
		ContactEmail *string `json:"contact_email"`
		Description  *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ContactEmail != nil && !ValidEmail(*req.ContactEmail) {
		writeError(w, http.StatusBadRequest, "A valid contact email is required")
		return
	}

	_, err = database.PostgresDB.Exec(`
		UPDATE clinics
		SET city = COALESCE($1, city), contact_email = COALESCE($2, contact_email),
		    description = COALESCE($3, description), updated_at = NOW()
		WHERE id = $4
	`, req.City, req.ContactEmail, req.Description, clinicID)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Clinic profile updated",
	})
}
