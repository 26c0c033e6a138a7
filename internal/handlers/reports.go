package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/middleware"
	"github.com/nurtura-health/nurtura-backend/internal/models"
	"github.com/nurtura-health/nurtura-backend/internal/services"
)

const reportColumns = `
	id, created_at, updated_at, reporter_id, psychologist_id, reason,
	COALESCE(details, ''), status, action_taken`

func scanReport(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.ProfessionalReport, error) {
	var rep models.ProfessionalReport
	err := scanner.Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt, &rep.ReporterID,
		&rep.PsychologistID, &rep.Reason, &rep.Details, &rep.Status, &rep.ActionTaken)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// CreateReport files a moderation report against a psychologist. Any
// authenticated user can report; new reports are always open.
func CreateReport(w http.ResponseWriter, r *http.Request) {
	reporterID, _ := middleware.UserIDFromContext(r.Context())

	var req struct {
		PsychologistID string `json:"psychologist_id"`
		Reason         string `json:"reason"`
		Details        string `json:"details"`
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
	if req.Reason == "" {
		req.Reason = models.ReportReasonOther
	}
	if !models.ValidReportReason(req.Reason) {
		writeError(w, http.StatusBadRequest, "Invalid report reason")
		return
	}
	req.Details = strings.TrimSpace(req.Details)
	if len(req.Details) > 5000 {
		writeError(w, http.StatusBadRequest, "Details must be 5000 characters or fewer")
		return
	}

	row := database.PostgresDB.QueryRow(`
		INSERT INTO professional_reports (reporter_id, psychologist_id, reason, details, status, action_taken)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING `+reportColumns, reporterID, psychologistID, req.Reason, req.Details,
		models.ReportOpen, models.ReportActionNone)
	rep, err := scanReport(row)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"report":  rep,
	})
}

// ListReports is the admin moderation queue, optionally filtered by status
func ListReports(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidReportStatus(status) {
		writeError(w, http.StatusBadRequest, "Invalid status filter")
		return
	}

	query := `SELECT ` + reportColumns + ` FROM professional_reports`
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

	reports := []models.ProfessionalReport{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			writeDBError(w, err)
			return
		}
		reports = append(reports, *rep)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"reports": reports,
		"count":   len(reports),
	})
}

// UpdateReport lets an admin move a report through moderation. Fields are
// optional and validated independently; an action with a profile side effect
// updates the psychologist in the same transaction.
func UpdateReport(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.UserIDFromContext(r.Context())
	reportID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid report ID")
		return
	}

	var req struct {
		Status      *string `json:"status"`
		ActionTaken *string `json:"action_taken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == nil && req.ActionTaken == nil {
		writeError(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	if req.Status != nil && !models.ValidReportStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid report status")
		return
	}
	if req.ActionTaken != nil && !models.ValidReportAction(*req.ActionTaken) {
		writeError(w, http.StatusBadRequest, "Invalid moderation action")
		return
	}

	tx, err := database.PostgresDB.Begin()
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer tx.Rollback()

	row := tx.QueryRow(`
		UPDATE professional_reports
		SET status = COALESCE($1, status), action_taken = COALESCE($2, action_taken),
		    updated_at = NOW()
		WHERE id = $3
		RETURNING `+reportColumns, req.Status, req.ActionTaken, reportID)
	rep, err := scanReport(row)
	if err != nil {
		writeDBError(w, err)
		return
	}

	profileTouched := false
	if req.ActionTaken != nil {
		if forced := models.ActionStatusForPsychologist(*req.ActionTaken); forced != "" {
			// verified_at stays in place so a later reinstatement keeps the
			// original verification date
			_, err = tx.Exec(`
				UPDATE psychologists
				SET verification_status = $1, updated_at = NOW()
				WHERE id = $2
			`, forced, rep.PsychologistID)
			if err != nil {
				writeDBError(w, err)
				return
			}
			profileTouched = true
		}
	}

	if err := tx.Commit(); err != nil {
		writeDBError(w, err)
		return
	}

	details := bson.M{
		"psychologist_id": rep.PsychologistID.String(),
		"status":          rep.Status,
		"action_taken":    rep.ActionTaken,
	}
	_ = services.RecordAdminAction(r.Context(), adminID, "report_updated",
		"professional_report", reportID.String(), details)

	if profileTouched {
		services.InvalidateDirectoryCache()
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"report":  rep,
	})
}
