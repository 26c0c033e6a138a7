package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nurtura-health/nurtura-backend/internal/config"
	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/models"
	"github.com/nurtura-health/nurtura-backend/internal/services"
)

var cloudinaryService *services.CloudinaryService

func InitCloudinaryService(cfg *config.Config) error {
	service, err := services.NewCloudinaryService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

// GetActivities lists published activities, optionally filtered by ?age=
func GetActivities(w http.ResponseWriter, r *http.Request) {
	query := `
		SELECT id, created_at, updated_at, title, COALESCE(description, ''), COALESCE(category, ''),
		       min_age, max_age, stars_reward, COALESCE(image_url, ''), is_published
		FROM activities WHERE is_published = TRUE`
	args := []interface{}{}
	if s := r.URL.Query().Get("age"); s != "" {
		age, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid age")
			return
		}
		query += ` AND min_age <= $1 AND max_age >= $1`
		args = append(args, age)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := database.PostgresDB.Query(query, args...)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Title, &a.Description,
			&a.Category, &a.MinAge, &a.MaxAge, &a.StarsReward, &a.ImageURL, &a.IsPublished); err != nil {
			writeDBError(w, err)
			return
		}
		activities = append(activities, a)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"activities": activities,
		"count":      len(activities),
	})
}

// GetAdvice lists published advice articles
func GetAdvice(w http.ResponseWriter, r *http.Request) {
	rows, err := database.PostgresDB.Query(`
		SELECT id, created_at, updated_at, title, body, COALESCE(category, ''),
		       COALESCE(image_url, ''), is_published
		FROM advice WHERE is_published = TRUE
		ORDER BY created_at DESC
	`)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	items := []models.Advice{}
	for rows.Next() {
		var a models.Advice
		if err := rows.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &a.Title, &a.Body,
			&a.Category, &a.ImageURL, &a.IsPublished); err != nil {
			writeDBError(w, err)
			return
		}
		items = append(items, a)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"advice":  items,
		"count":   len(items),
	})
}

// GetContentItems lists published content items, optionally by ?kind=
func GetContentItems(w http.ResponseWriter, r *http.Request) {
	query := `
		SELECT id, created_at, updated_at, title, kind, COALESCE(body, ''),
		       COALESCE(media_url, ''), is_published
		FROM content_items WHERE is_published = TRUE`
	args := []interface{}{}
	if kind := r.URL.Query().Get("kind"); kind != "" {
		query += ` AND kind = $1`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := database.PostgresDB.Query(query, args...)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	items := []models.ContentItem{}
	for rows.Next() {
		var c models.ContentItem
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Title, &c.Kind,
			&c.Body, &c.MediaURL, &c.IsPublished); err != nil {
			writeDBError(w, err)
			return
		}
		items = append(items, c)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"items":   items,
		"count":   len(items),
	})
}

// CreateActivity adds an activity to the catalog (admin)
func CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		MinAge      int    `json:"min_age"`
		MaxAge      int    `json:"max_age"`
		StarsReward int    `json:"stars_reward"`
		ImageURL    string `json:"image_url"`
		IsPublished bool   `json:"is_published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.MaxAge == 0 {
		req.MaxAge = 18
	}
	if req.StarsReward <= 0 {
		req.StarsReward = 1
	}

	activityID := uuid.New()
	now := time.Now()
	_, err := database.PostgresDB.Exec(`
		INSERT INTO activities (id, created_at, updated_at, title, description, category,
		                        min_age, max_age, stars_reward, image_url, is_published)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, NULLIF($10, ''), $11)
	`, activityID, now, now, req.Title, req.Description, req.Category,
		req.MinAge, req.MaxAge, req.StarsReward, req.ImageURL, req.IsPublished)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"activity": map[string]interface{}{
			"id":    activityID.String(),
			"title": req.Title,
		},
	})
}

// UpdateActivity patches an activity (admin)
func UpdateActivity(w http.ResponseWriter, r *http.Request) {
	activityID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid activity ID")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		MinAge      *int    `json:"min_age"`
		MaxAge      *int    `json:"max_age"`
		StarsReward *int    `json:"stars_reward"`
		ImageURL    *string `json:"image_url"`
		IsPublished *bool   `json:"is_published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := database.PostgresDB.Exec(`
		UPDATE activities
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    category = COALESCE($3, category),
		    min_age = COALESCE($4, min_age),
		    max_age = COALESCE($5, max_age),
		    stars_reward = COALESCE($6, stars_reward),
		    image_url = COALESCE($7, image_url),
		    is_published = COALESCE($8, is_published),
		    updated_at = NOW()
		WHERE id = $9
	`, req.Title, req.Description, req.Category, req.MinAge, req.MaxAge,
		req.StarsReward, req.ImageURL, req.IsPublished, activityID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		writeError(w, http.StatusNotFound, "Activity not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Activity updated",
	})
}

// CreateAdvice publishes an advice article (admin)
func CreateAdvice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Body        string `json:"body"`
		Category    string `json:"category"`
		ImageURL    string `json:"image_url"`
		IsPublished bool   `json:"is_published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "Title and body are required")
		return
	}

	adviceID := uuid.New()
	now := time.Now()
	_, err := database.PostgresDB.Exec(`
		INSERT INTO advice (id, created_at, updated_at, title, body, category, image_url, is_published)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)
	`, adviceID, now, now, req.Title, req.Body, req.Category, req.ImageURL, req.IsPublished)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"advice": map[string]interface{}{
			"id":    adviceID.String(),
			"title": req.Title,
		},
	})
}

// CreateContentItem publishes a generic content item (admin)
func CreateContentItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Kind        string `json:"kind"`
		Body        string `json:"body"`
		MediaURL    string `json:"media_url"`
		IsPublished bool   `json:"is_published"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Kind == "" {
		writeError(w, http.StatusBadRequest, "Title and kind are required")
		return
	}

	itemID := uuid.New()
	now := time.Now()
	_, err := database.PostgresDB.Exec(`
		INSERT INTO content_items (id, created_at, updated_at, title, kind, body, media_url, is_published)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)
	`, itemID, now, now, req.Title, req.Kind, req.Body, req.MediaURL, req.IsPublished)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"item": map[string]interface{}{
			"id":    itemID.String(),
			"title": req.Title,
			"kind":  req.Kind,
		},
	})
}

// UploadContentMedia uploads a content image to Cloudinary (admin)
func UploadContentMedia(w http.ResponseWriter, r *http.Request) {
	if cloudinaryService == nil {
		writeError(w, http.StatusInternalServerError, "File upload service not available")
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = "nurtura-content"
	}

	url, err := cloudinaryService.UploadFileFromHeader(r.Context(), fileHeader, folder)
	if err != nil {
		log.Printf("ERROR: content media upload failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to upload file")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "File uploaded successfully",
		"url":     url,
	})
}
