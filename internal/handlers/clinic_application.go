package handlers

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nurtura-health/nurtura-backend/internal/config"
	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/middleware"
	"github.com/nurtura-health/nurtura-backend/internal/models"
	"github.com/nurtura-health/nurtura-backend/internal/services"
	"github.com/nurtura-health/nurtura-backend/pkg/clientip"
	"github.com/nurtura-health/nurtura-backend/pkg/utils"
)

// clinicInviteTTL is how long an onboarding invite stays redeemable.
const clinicInviteTTL = 7 * 24 * time.Hour

var documentStore *services.DocumentStore

// InitDocumentStore prepares the local store for verification documents.
// Called once at startup.
func InitDocumentStore(cfg *config.Config) error {
	store, err := services.NewDocumentStore(cfg.UploadDir)
	if err != nil {
		return err
	}
	documentStore = store
	return nil
}

const clinicApplicationColumns = `
	id, created_at, updated_at, clinic_name, country, COALESCE(city, ''), contact_email,
	COALESCE(description, ''), document_filename, status, reviewed_at, reviewed_by,
	COALESCE(rejection_reason, ''), clinic_id`

func scanClinicApplication(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ClinicApplication, error) {
	var app models.ClinicApplication
	err := scanner.Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt, &app.ClinicName, &app.Country,
		&app.City, &app.ContactEmail, &app.Description, &app.DocumentFilename, &app.Status,
		&app.ReviewedAt, &app.ReviewedBy, &app.RejectionReason, &app.ClinicID)
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// SubmitClinicApplication is the public intake endpoint. No account is
// required; rate limiting happens in middleware.
func SubmitClinicApplication(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(services.MaxDocumentSize + 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	clinicName := strings.TrimSpace(r.FormValue("clinic_name"))
	country := strings.TrimSpace(r.FormValue("country"))
	city := strings.TrimSpace(r.FormValue("city"))
	contactEmail := strings.TrimSpace(strings.ToLower(r.FormValue("contact_email")))
	description := strings.TrimSpace(r.FormValue("description"))

	if clinicName == "" || len(clinicName) > 255 {
		writeError(w, http.StatusBadRequest, "Clinic name is required and must be 255 characters or fewer")
		return
	}
	if country == "" {
		writeError(w, http.StatusBadRequest, "Country is required")
		return
	}
	if !ValidEmail(contactEmail) {
		writeError(w, http.StatusBadRequest, "A valid contact email is required")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A verification document is required")
		return
	}
	defer file.Close()

	filename, err := documentStore.Save(file, header)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentTooLarge):
			writeError(w, http.StatusBadRequest, "Document exceeds the 10MB limit")
		case errors.Is(err, services.ErrUnsupportedDocumentType):
			writeError(w, http.StatusBadRequest, "Document must be a PDF, JPEG, PNG or WebP file")
		default:
			log.Printf("Failed to store clinic application document: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to store document")
		}
		return
	}

	applicationID := uuid.New()
	_, err = database.PostgresDB.Exec(`
		INSERT INTO clinic_applications
			(id, clinic_name, country, city, contact_email, description, document_filename, status, ip_address)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, NULLIF($9, ''))
	`, applicationID, clinicName, country, city, contactEmail, description, filename,
		models.ApplicationPending, clientip.RealClientIP(r))
	if err != nil {
		_ = documentStore.Remove(filename)
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":        true,
		"message":        "Application received and awaiting review",
		"application_id": applicationID.String(),
	})
}

// ListClinicApplications is the admin queue
func ListClinicApplications(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != models.ApplicationPending &&
		status != models.ApplicationApproved && status != models.ApplicationRejected {
		writeError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	query := `SELECT ` + clinicApplicationColumns + ` FROM clinic_applications`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := database.PostgresDB.Query(query, args...)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	applications := []models.ClinicApplication{}
	for rows.Next() {
		app, err := scanClinicApplication(rows)
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

// GetClinicApplication returns one application for admin review
func GetClinicApplication(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	row := database.PostgresDB.QueryRow(`SELECT `+clinicApplicationColumns+`
		FROM clinic_applications WHERE id = $1`, applicationID)
	app, err := scanClinicApplication(row)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"application": app,
	})
}

// GetClinicApplicationDocumentURL mints a short-lived link to the uploaded
// document. The token names the application, never the stored file, so a
// leaked link cannot be retargeted at other files.
func GetClinicApplicationDocumentURL(w http.ResponseWriter, r *http.Request) {
	applicationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var exists bool
	err = database.PostgresDB.QueryRow(`
		SELECT TRUE FROM clinic_applications WHERE id = $1
	`, applicationID).Scan(&exists)
	if err != nil {
		writeDBError(w, err)
		return
	}

	token, err := services.IssueDocumentToken(applicationID)
	if err != nil {
		log.Printf("Failed to issue document token: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to issue document link")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"url":        "/api/clinic-applications/document?token=" + token,
		"expires_in": int(services.DocumentTokenDuration.Seconds()),
	})
}

// ServeClinicApplicationDocument streams a document in exchange for a valid
// capability token
func ServeClinicApplicationDocument(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		writeError(w, http.StatusUnauthorized, "Missing document token")
		return
	}

	applicationID, err := services.ValidateDocumentToken(tokenString)
	if err != nil {
		if errors.Is(err, services.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "Document link has expired")
			return
		}
		writeError(w, http.StatusUnauthorized, "Invalid document token")
		return
	}

	var filename string
	err = database.PostgresDB.QueryRow(`
		SELECT document_filename FROM clinic_applications WHERE id = $1
	`, applicationID).Scan(&filename)
	if err != nil {
		writeDBError(w, err)
		return
	}

	path, err := documentStore.Resolve(filename)
	if err != nil {
		log.Printf("Refusing to serve document for application %s: %v", applicationID, err)
		writeError(w, http.StatusNotFound, "Document not found")
		return
	}

	http.ServeFile(w, r, path)
}

// ReviewClinicApplication approves or rejects a pending clinic application.
// Approval creates the clinic and a single-use onboarding invite for the
// contact email in the same transaction.
func ReviewClinicApplication(w http.ResponseWriter, r *http.Request) {
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
	if !models.CanTransitionClinicApplication(models.ApplicationPending, req.Status) {
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

	result, err := tx.Exec(`
		UPDATE clinic_applications
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
		err := tx.QueryRow(`SELECT TRUE FROM clinic_applications WHERE id = $1`, applicationID).Scan(&exists)
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

	var clinicID *uuid.UUID
	var inviteToken string
	if req.Status == models.ApplicationApproved {
		row := tx.QueryRow(`SELECT `+clinicApplicationColumns+`
			FROM clinic_applications WHERE id = $1`, applicationID)
		app, err := scanClinicApplication(row)
		if err != nil {
			writeDBError(w, err)
			return
		}

		newID := uuid.New()
		slug := utils.ClinicSlug(app.ClinicName, app.ID.String())
		_, err = tx.Exec(`
			INSERT INTO clinics
				(id, name, slug, country, city, contact_email, description,
				 verification_status, verified_at, reviewed_by, is_active)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), $8, NOW(), $9, TRUE)
		`, newID, app.ClinicName, slug, app.Country, app.City, app.ContactEmail,
			app.Description, models.ClinicVerified, adminID)
		if err != nil {
			writeDBError(w, err)
			return
		}

		inviteToken, err = newInviteToken()
		if err != nil {
			log.Printf("Failed to generate invite token: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to create invite")
			return
		}
		_, err = tx.Exec(`
			INSERT INTO clinic_invites (clinic_id, email, token, expires_at)
			VALUES ($1, $2, $3, $4)
		`, newID, app.ContactEmail, inviteToken, time.Now().UTC().Add(clinicInviteTTL))
		if err != nil {
			writeDBError(w, err)
			return
		}

		_, err = tx.Exec(`
			UPDATE clinic_applications SET clinic_id = $1 WHERE id = $2
		`, newID, applicationID)
		if err != nil {
			writeDBError(w, err)
			return
		}

		clinicID = &newID
	}

	if err := tx.Commit(); err != nil {
		writeDBError(w, err)
		return
	}

	details := bson.M{"status": req.Status}
	if clinicID != nil {
		details["clinic_id"] = clinicID.String()
	}
	if req.RejectionReason != "" {
		details["rejection_reason"] = req.RejectionReason
	}
	_ = services.RecordAdminAction(r.Context(), adminID, "clinic_application_reviewed",
		"clinic_application", applicationID.String(), details)

	services.InvalidateDirectoryCache()

	response := map[string]interface{}{
		"success": true,
		"message": "Application " + req.Status,
	}
	if clinicID != nil {
		response["clinic_id"] = clinicID.String()
		// Returned once so the operator can forward it; invites are not
		// retrievable afterwards
		response["invite_token"] = inviteToken
	}
	writeJSON(w, http.StatusOK, response)
}

func newInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
