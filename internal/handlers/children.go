package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/middleware"
	"github.com/nurtura-health/nurtura-backend/internal/models"
)

// childOwnedByParent loads a child row and verifies it belongs to the caller.
func childOwnedByParent(childID, parentID uuid.UUID) (*models.Child, error) {
	var c models.Child
	err := database.PostgresDB.QueryRow(`
		SELECT id, created_at, updated_at, parent_id, name, COALESCE(birth_year, 0),
		       COALESCE(avatar_url, ''), star_total, streak_count, last_activity_date, is_active
		FROM children WHERE id = $1 AND parent_id = $2 AND is_active = TRUE
	`, childID, parentID).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.ParentID, &c.Name,
		&c.BirthYear, &c.AvatarURL, &c.StarTotal, &c.StreakCount, &c.LastActivityDate, &c.IsActive)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateChild adds a child profile for the authenticated parent
func CreateChild(w http.ResponseWriter, r *http.Request) {
	parentID, _ := middleware.UserIDFromContext(r.Context())

	var req struct {
		Name      string `json:"name"`
		BirthYear int    `json:"birth_year"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	childID := uuid.New()
	now := time.Now()
	_, err := database.PostgresDB.Exec(`
		INSERT INTO children (id, created_at, updated_at, parent_id, name, birth_year, avatar_url)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, 0), NULLIF($7, ''))
	`, childID, now, now, parentID, req.Name, req.BirthYear, req.AvatarURL)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"child": map[string]interface{}{
			"id":           childID.String(),
			"name":         req.Name,
			"birth_year":   req.BirthYear,
			"avatar_url":   req.AvatarURL,
			"star_total":   0,
			"streak_count": 0,
			"created_at":   now,
		},
	})
}

// GetChildren lists the caller's active children
func GetChildren(w http.ResponseWriter, r *http.Request) {
	parentID, _ := middleware.UserIDFromContext(r.Context())

	rows, err := database.PostgresDB.Query(`
		SELECT id, created_at, updated_at, parent_id, name, COALESCE(birth_year, 0),
		       COALESCE(avatar_url, ''), star_total, streak_count, last_activity_date, is_active
		FROM children WHERE parent_id = $1 AND is_active = TRUE
		ORDER BY created_at ASC
	`, parentID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	children := []models.Child{}
	for rows.Next() {
		var c models.Child
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.ParentID, &c.Name,
			&c.BirthYear, &c.AvatarURL, &c.StarTotal, &c.StreakCount, &c.LastActivityDate, &c.IsActive); err != nil {
			writeDBError(w, err)
			return
		}
		children = append(children, c)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"children": children,
		"count":    len(children),
	})
}

// GetChild returns one child profile
func GetChild(w http.ResponseWriter, r *http.Request) {
	parentID, _ := middleware.UserIDFromContext(r.Context())
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid child ID")
		return
	}

	child, err := childOwnedByParent(childID, parentID)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"child":   child,
	})
}

// UpdateChild updates name, birth year, or avatar for one child
func UpdateChild(w http.ResponseWriter, r *http.Request) {
	parentID, _ := middleware.UserIDFromContext(r.Context())
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid child ID")
		return
	}

	// Typed patch: only fields present in the body are updated
	var req struct {
		Name      *string `json:"name"`
		BirthYear *int    `json:"birth_year"`
		AvatarURL *string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if _, err := childOwnedByParent(childID, parentID); err != nil {
		writeDBError(w, err)
		return
	}

	_, err = database.PostgresDB.Exec(`
		UPDATE children
		SET name = COALESCE($1, name),
		    birth_year = COALESCE($2, birth_year),
		    avatar_url = COALESCE($3, avatar_url),
		    updated_at = NOW()
		WHERE id = $4 AND parent_id = $5
	`, req.Name, req.BirthYear, req.AvatarURL, childID, parentID)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Child updated",
	})
}

// DeleteChild soft-deletes a child profile
func DeleteChild(w http.ResponseWriter, r *http.Request) {
	parentID, _ := middleware.UserIDFromContext(r.Context())
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid child ID")
		return
	}

	result, err := database.PostgresDB.Exec(`
		UPDATE children SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND parent_id = $2 AND is_active = TRUE
	`, childID, parentID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Child not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Child removed",
	})
}

// RecordProgress stores an activity completion for a child, awards stars,
// and advances the daily streak
func RecordProgress(w http.ResponseWriter, r *http.Request) {
	parentID, _ := middleware.UserIDFromContext(r.Context())
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid child ID")
		return
	}

	var req struct {
		ActivityID string `json:"activity_id"`
		Stars      int    `json:"stars"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	activityID, err := uuid.Parse(req.ActivityID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid activity ID")
		return
	}
	if req.Stars < 0 || req.Stars > 5 {
		writeError(w, http.StatusBadRequest, "Stars must be between 0 and 5")
		return
	}

	child, err := childOwnedByParent(childID, parentID)
	if err != nil {
		writeDBError(w, err)
		return
	}

	now := time.Now()
	streak := models.NextStreak(child.StreakCount, child.LastActivityDate, now)

	tx, err := database.PostgresDB.Begin()
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer tx.Rollback()

	progressID := uuid.New()
	_, err = tx.Exec(`
		INSERT INTO progress (id, child_id, activity_id, stars, completed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, progressID, childID, activityID, req.Stars, now)
	if err != nil {
		writeDBError(w, err)
		return
	}

	_, err = tx.Exec(`
		UPDATE children
		SET star_total = star_total + $1,
		    streak_count = $2,
		    last_activity_date = $3,
		    updated_at = NOW()
		WHERE id = $4
	`, req.Stars, streak, now, childID)
	if err != nil {
		writeDBError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"progress": map[string]interface{}{
			"id":           progressID.String(),
			"child_id":     childID.String(),
			"activity_id":  activityID.String(),
			"stars":        req.Stars,
			"completed_at": now,
		},
		"star_total":   child.StarTotal + req.Stars,
		"streak_count": streak,
	})
}

// GetProgress lists a child's progress records
func GetProgress(w http.ResponseWriter, r *http.Request) {
	parentID, _ := middleware.UserIDFromContext(r.Context())
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid child ID")
		return
	}

	if _, err := childOwnedByParent(childID, parentID); err != nil {
		writeDBError(w, err)
		return
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, child_id, activity_id, stars, completed_at
		FROM progress WHERE child_id = $1
		ORDER BY completed_at DESC
		LIMIT 100
	`, childID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	progress := []models.Progress{}
	for rows.Next() {
		var p models.Progress
		if err := rows.Scan(&p.ID, &p.ChildID, &p.ActivityID, &p.Stars, &p.CompletedAt); err != nil {
			writeDBError(w, err)
			return
		}
		progress = append(progress, p)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"progress": progress,
		"count":    len(progress),
	})
}

// LogEmotion records how a child is feeling
func LogEmotion(w http.ResponseWriter, r *http.Request) {
	parentID, _ := middleware.UserIDFromContext(r.Context())
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid child ID")
		return
	}

	var req struct {
		Emotion string `json:"emotion"`
		Note    string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !models.ValidEmotion(req.Emotion) {
		writeError(w, http.StatusBadRequest, "Unknown emotion")
		return
	}

	if _, err := childOwnedByParent(childID, parentID); err != nil {
		writeDBError(w, err)
		return
	}

	logID := uuid.New()
	now := time.Now()
	_, err = database.PostgresDB.Exec(`
		INSERT INTO emotion_logs (id, child_id, emotion, note, logged_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
	`, logID, childID, req.Emotion, req.Note, now)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"emotion_log": map[string]interface{}{
			"id":        logID.String(),
			"child_id":  childID.String(),
			"emotion":   req.Emotion,
			"note":      req.Note,
			"logged_at": now,
		},
	})
}

// GetEmotionLogs lists a child's emotion logs, optionally bounded by ?from=&to=
func GetEmotionLogs(w http.ResponseWriter, r *http.Request) {
	parentID, _ := middleware.UserIDFromContext(r.Context())
	childID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid child ID")
		return
	}

	if _, err := childOwnedByParent(childID, parentID); err != nil {
		writeDBError(w, err)
		return
	}

	from := time.Time{}
	to := time.Now().Add(24 * time.Hour)
	if s := r.URL.Query().Get("from"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			from = t
		}
	}
	if s := r.URL.Query().Get("to"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			to = t
		}
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, child_id, emotion, COALESCE(note, ''), logged_at
		FROM emotion_logs
		WHERE child_id = $1 AND logged_at >= $2 AND logged_at <= $3
		ORDER BY logged_at DESC
		LIMIT 200
	`, childID, from, to)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	logs := []models.EmotionLog{}
	for rows.Next() {
		var l models.EmotionLog
		if err := rows.Scan(&l.ID, &l.ChildID, &l.Emotion, &l.Note, &l.LoggedAt); err != nil {
			writeDBError(w, err)
			return
		}
		logs = append(logs, l)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"emotion_logs": logs,
		"count":        len(logs),
	})
}
