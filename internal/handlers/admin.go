package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/middleware"
	"github.com/nurtura-health/nurtura-backend/internal/models"
	"github.com/nurtura-health/nurtura-backend/internal/services"
)

// GetAdminDashboard returns the pending-work counters the admin UI polls
func GetAdminDashboard(w http.ResponseWriter, r *http.Request) {
	var pendingTherapistApps, pendingClinicApps, pendingCredentials, openReports int
	err := database.PostgresDB.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM therapist_applications WHERE status = $1),
			(SELECT COUNT(*) FROM clinic_applications WHERE status = $1),
			(SELECT COUNT(*) FROM professional_credentials WHERE verification_status = $2),
			(SELECT COUNT(*) FROM professional_reports WHERE status = $3)
	`, models.ApplicationPending, models.CredentialPending, models.ReportOpen).
		Scan(&pendingTherapistApps, &pendingClinicApps, &pendingCredentials, &openReports)
	if err != nil {
		writeDBError(w, err)
		return
	}

	entries, err := services.LoadAuditEntries(r.Context(), services.AdminAuditCollection, "", "", nil, 10)
	if err != nil {
		entries = []services.AuditEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"pending": map[string]interface{}{
			"therapist_applications": pendingTherapistApps,
			"clinic_applications":    pendingClinicApps,
			"credentials":            pendingCredentials,
			"reports":                openReports,
		},
		"recent_activity": entries,
	})
}

// ListUsers returns users for admin management, optionally filtered by role
func ListUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" && !models.ValidRole(role) {
		writeError(w, http.StatusBadRequest, "Invalid role filter")
		return
	}

	query := `SELECT id, created_at, updated_at, email, name, role, is_active FROM users`
	args := []interface{}{}
	if role != "" {
		query += ` WHERE role = $1`
		args = append(args, role)
	}
	query += ` ORDER BY created_at DESC LIMIT 200`

	rows, err := database.PostgresDB.Query(query, args...)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Email, &u.Name, &u.Role, &u.IsActive); err != nil {
			writeDBError(w, err)
			return
		}
		users = append(users, u)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   users,
		"count":   len(users),
	})
}

// UpdateUser lets an admin change a user's role or active flag
func UpdateUser(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.UserIDFromContext(r.Context())
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req struct {
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role == nil && req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	if req.Role != nil && !models.ValidRole(*req.Role) {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	result, err := database.PostgresDB.Exec(`
		UPDATE users
		SET role = COALESCE($1, role), is_active = COALESCE($2, is_active), updated_at = NOW()
		WHERE id = $3
	`, req.Role, req.IsActive, userID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	details := bson.M{}
	if req.Role != nil {
		details["role"] = *req.Role
	}
	if req.IsActive != nil {
		details["is_active"] = *req.IsActive
	}
	_ = services.RecordAdminAction(r.Context(), adminID, "user_updated",
		"user", userID.String(), details)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User updated",
	})
}

// UpdatePsychologist lets an admin change a psychologist's verification
// status directly. Marking one verified stamps verified_at on first
// verification only and always refreshes the last review time; the expiry
// date is left alone so a suspension does not erase it.
func UpdatePsychologist(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.UserIDFromContext(r.Context())
	psychologistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid psychologist ID")
		return
	}

	var req struct {
		VerificationStatus *string `json:"verification_status"`
		// Older clients send a boolean flag instead of a status string
		IsVerified *bool `json:"is_verified"`
		IsActive   *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var status *string
	switch {
	case req.VerificationStatus != nil:
		if !models.ValidPsychologistStatus(*req.VerificationStatus) {
			writeError(w, http.StatusBadRequest, "Invalid verification status")
			return
		}
		status = req.VerificationStatus
	case req.IsVerified != nil:
		mapped := models.VerificationPending
		if *req.IsVerified {
			mapped = models.VerificationVerified
		}
		status = &mapped
	}
	if status == nil && req.IsActive == nil {
		writeError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	tx, err := database.PostgresDB.Begin()
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer tx.Rollback()

	if status != nil {
		if *status == models.VerificationVerified {
			_, err = tx.Exec(`
				UPDATE psychologists
				SET verification_status = $1,
				    verified_at = COALESCE(verified_at, NOW()),
				    last_verification_review_at = NOW(),
				    updated_at = NOW()
				WHERE id = $2
			`, *status, psychologistID)
		} else {
			_, err = tx.Exec(`
				UPDATE psychologists
				SET verification_status = $1, last_verification_review_at = NOW(), updated_at = NOW()
				WHERE id = $2
			`, *status, psychologistID)
		}
		if err != nil {
			writeDBError(w, err)
			return
		}
	}

	if req.IsActive != nil {
		_, err = tx.Exec(`
			UPDATE psychologists SET is_active = $1, updated_at = NOW() WHERE id = $2
		`, *req.IsActive, psychologistID)
		if err != nil {
			writeDBError(w, err)
			return
		}
	}

	row := tx.QueryRow(`SELECT `+publicPsychologistColumns+`
		FROM psychologists WHERE id = $1`, psychologistID)
	p, err := scanPsychologist(row)
	if err != nil {
		writeDBError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeDBError(w, err)
		return
	}

	details := bson.M{"verification_status": p.VerificationStatus, "is_active": p.IsActive}
	_ = services.RecordAdminAction(r.Context(), adminID, "psychologist_updated",
		"psychologist", psychologistID.String(), details)

	services.InvalidateDirectoryCache()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"psychologist": p,
	})
}

// GetAuditLog serves paginated audit history for admins
func GetAuditLog(w http.ResponseWriter, r *http.Request) {
	collection := services.AdminAuditCollection
	if r.URL.Query().Get("log") == "therapist" {
		collection = services.TherapistAuditCollection
	}

	var before *time.Time
	if raw := r.URL.Query().Get("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		before = &parsed
	}

	var limit int64 = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := services.LoadAuditEntries(r.Context(), collection,
		r.URL.Query().Get("target_type"), r.URL.Query().Get("target_id"), before, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load audit log")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entries": entries,
		"count":   len(entries),
	})
}
