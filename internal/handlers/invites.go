package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/models"
	"github.com/nurtura-health/nurtura-backend/internal/services"
	"github.com/nurtura-health/nurtura-backend/pkg/utils"
)

// AcceptClinicInvite redeems an onboarding invite: it creates the clinic
// admin account and consumes the token in one transaction. A token that is
// missing, expired or already consumed gets the same generic rejection so the
// endpoint leaks nothing about which invites exist.
func AcceptClinicInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Token = strings.TrimSpace(req.Token)
	req.Name = strings.TrimSpace(req.Name)
	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "Invite token is required")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	tx, err := database.PostgresDB.Begin()
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer tx.Rollback()

	// The WHERE clause is the single-use guard: only one acceptance can
	// flip consumed_at
	var clinicID uuid.UUID
	var email string
	err = tx.QueryRow(`
		UPDATE clinic_invites
		SET consumed_at = NOW()
		WHERE token = $1 AND consumed_at IS NULL AND expires_at > NOW()
		RETURNING clinic_id, email
	`, req.Token).Scan(&clinicID, &email)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or expired invite")
		return
	}

	userID := uuid.New()
	now := time.Now().UTC()
	_, err = tx.Exec(`
		INSERT INTO users (id, created_at, updated_at, email, password_hash, name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, userID, now, now, email, hashedPassword, req.Name, models.RoleClinicAdmin, true)
	if err != nil {
		writeDBError(w, err)
		return
	}

	_, err = tx.Exec(`
		INSERT INTO clinic_admins (user_id, clinic_id) VALUES ($1, $2)
	`, userID, clinicID)
	if err != nil {
		writeDBError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeDBError(w, err)
		return
	}

	token, err := services.IssueAuthToken(userID, models.RoleClinicAdmin)
	if err != nil {
		log.Printf("Failed to issue token after invite acceptance: %v", err)
		writeError(w, http.StatusInternalServerError, "Account created, please sign in")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Invite accepted",
		"token":   token,
		"user": map[string]interface{}{
			"id":        userID.String(),
			"email":     email,
			"name":      req.Name,
			"role":      models.RoleClinicAdmin,
			"clinic_id": clinicID.String(),
		},
	})
}
