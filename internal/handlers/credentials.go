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

const credentialColumns = `
	id, created_at, updated_at, psychologist_id, title, COALESCE(issuer, ''),
	document_url, verification_status, expires_at, renewal_requested_at, reviewed_by`

func scanCredential(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ProfessionalCredential, error) {
	var c models.ProfessionalCredential
	err := scanner.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.PsychologistID, &c.Title,
		&c.Issuer, &c.DocumentURL, &c.VerificationStatus, &c.ExpiresAt,
		&c.RenewalRequestedAt, &c.ReviewedBy)
	if err != nil {
		return nil, err
	}
	c.VerificationStatus = models.CredentialDisplayStatus(c.VerificationStatus)
	return &c, nil
}

// psychologistIDForUser maps an authenticated therapist to their profile row.
func psychologistIDForUser(userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := database.PostgresDB.QueryRow(`
		SELECT id FROM psychologists WHERE user_id = $1
	`, userID).Scan(&id)
	return id, err
}

type credentialRequest struct {
	Title               string `json:"title"`
	Issuer              string `json:"issuer"`
	DocumentURL         string `json:"document_url"`
	ExpiresAt           string `json:"expires_at"`
	CredentialID        string `json:"credential_id"`
	RenewalCredentialID string `json:"renewal_credential_id"`
}

// SubmitCredential handles all three credential flows. Which one runs is
// decided by which fields the request carries: a new document, a renewal
// request against an existing credential, or a document resubmission.
func SubmitCredential(w http.ResponseWriter, r *http.Request) {
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

	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.DocumentURL = strings.TrimSpace(req.DocumentURL)
	req.Title = strings.TrimSpace(req.Title)

	mode := models.SelectCredentialMode(req.DocumentURL != "", req.CredentialID != "", req.RenewalCredentialID != "")

	switch mode {
	case models.CredentialModeNew:
		if req.Title == "" {
			writeError(w, http.StatusBadRequest, "Credential title is required")
			return
		}
		var expiresAt *time.Time
		if req.ExpiresAt != "" {
			parsed, err := time.Parse("2006-01-02", req.ExpiresAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, "expires_at must be a YYYY-MM-DD date")
				return
			}
			expiresAt = &parsed
		}

		row := database.PostgresDB.QueryRow(`
			INSERT INTO professional_credentials
				(psychologist_id, title, issuer, document_url, verification_status, expires_at)
			VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
			RETURNING `+credentialColumns, psychologistID, req.Title, req.Issuer,
			req.DocumentURL, models.CredentialPending, expiresAt)
		cred, err := scanCredential(row)
		if err != nil {
			writeDBError(w, err)
			return
		}
		recordCredentialAction(r, userID, "credential_submitted", cred.ID)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success":    true,
			"credential": cred,
		})

	case models.CredentialModeRenewal:
		credentialID, err := uuid.Parse(req.RenewalCredentialID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid renewal_credential_id")
			return
		}
		row := database.PostgresDB.QueryRow(`
			UPDATE professional_credentials
			SET renewal_requested_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND psychologist_id = $2
			RETURNING `+credentialColumns, credentialID, psychologistID)
		cred, err := scanCredential(row)
		if err != nil {
			writeDBError(w, err)
			return
		}
		recordCredentialAction(r, userID, "credential_renewal_requested", cred.ID)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"credential": cred,
		})

	case models.CredentialModeResubmit:
		credentialID, err := uuid.Parse(req.CredentialID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid credential_id")
			return
		}
		// Resubmission replaces the document and sends the row back to review
		row := database.PostgresDB.QueryRow(`
			UPDATE professional_credentials
			SET document_url = $1, verification_status = $2, reviewed_by = NULL, updated_at = NOW()
			WHERE id = $3 AND psychologist_id = $4
			RETURNING `+credentialColumns, req.DocumentURL, models.CredentialPending,
			credentialID, psychologistID)
		cred, err := scanCredential(row)
		if err != nil {
			writeDBError(w, err)
			return
		}
		recordCredentialAction(r, userID, "credential_resubmitted", cred.ID)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":    true,
			"credential": cred,
		})

	default:
		writeError(w, http.StatusBadRequest,
			"Provide a document_url for a new credential, renewal_credential_id for a renewal, or credential_id with document_url to resubmit")
	}
}

func recordCredentialAction(r *http.Request, userID uuid.UUID, action string, credentialID uuid.UUID) {
	_ = services.RecordTherapistAction(r.Context(), userID, action,
		"professional_credential", credentialID.String(), nil)
}

// GetOwnCredentials lists the caller's credentials, all statuses included
func GetOwnCredentials(w http.ResponseWriter, r *http.Request) {
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

	rows, err := database.PostgresDB.Query(`SELECT `+credentialColumns+`
		FROM professional_credentials
		WHERE psychologist_id = $1
		ORDER BY created_at DESC`, psychologistID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	credentials := []models.ProfessionalCredential{}
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			writeDBError(w, err)
			return
		}
		credentials = append(credentials, *cred)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"credentials": credentials,
		"count":       len(credentials),
	})
}

// ListPendingCredentials is the admin review queue
func ListPendingCredentials(w http.ResponseWriter, r *http.Request) {
	rows, err := database.PostgresDB.Query(`SELECT `+credentialColumns+`
		FROM professional_credentials
		WHERE verification_status = $1 OR renewal_requested_at IS NOT NULL
		ORDER BY created_at ASC
		LIMIT 100`, models.CredentialPending)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	credentials := []models.ProfessionalCredential{}
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			writeDBError(w, err)
			return
		}
		credentials = append(credentials, *cred)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"credentials": credentials,
		"count":       len(credentials),
	})
}

// ReviewCredential sets a credential verified or rejected. The API accepts
// "pending_review" as a status and stores it as pending.
func ReviewCredential(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.UserIDFromContext(r.Context())
	credentialID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid credential ID")
		return
	}

	var req struct {
		Status    string `json:"status"`
		ExpiresAt string `json:"expires_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "pending_review" {
		req.Status = models.CredentialPending
	}
	if !models.ValidCredentialStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid credential status")
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpiresAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "expires_at must be a YYYY-MM-DD date")
			return
		}
		expiresAt = &parsed
	}

	row := database.PostgresDB.QueryRow(`
		UPDATE professional_credentials
		SET verification_status = $1, expires_at = COALESCE($2, expires_at),
		    renewal_requested_at = NULL, reviewed_by = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING `+credentialColumns, req.Status, expiresAt, adminID, credentialID)
	cred, err := scanCredential(row)
	if err != nil {
		writeDBError(w, err)
		return
	}

	_ = services.RecordAdminAction(r.Context(), adminID, "credential_reviewed",
		"professional_credential", credentialID.String(), bson.M{
			"status": models.CredentialDisplayStatus(req.Status),
		})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"credential": cred,
	})
}
