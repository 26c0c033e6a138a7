package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/middleware"
	"github.com/nurtura-health/nurtura-backend/internal/models"
	"github.com/nurtura-health/nurtura-backend/internal/services"
)

var directoryCache = &services.CacheService{}

const publicPsychologistColumns = `
	id, created_at, updated_at, user_id, professional_name, email, COALESCE(bio, ''),
	COALESCE(specialties, ''), years_of_experience, verification_status, verified_at,
	verification_expires_at, last_verification_review_at, rating_avg, rating_count, is_active`

func scanPsychologist(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Psychologist, error) {
	var p models.Psychologist
	err := scanner.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.UserID, &p.ProfessionalName,
		&p.Email, &p.Bio, &p.Specialties, &p.YearsOfExperience, &p.VerificationStatus,
		&p.VerifiedAt, &p.VerificationExpiresAt, &p.LastVerificationReviewAt,
		&p.RatingAvg, &p.RatingCount, &p.IsActive)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPsychologists is the public directory. Only active, verified profiles
// are ever listed; the unfiltered listing is cached in Redis.
func ListPsychologists(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))

	// Cache only the common unfiltered page
	if search == "" {
		var cached []models.Psychologist
		if hit, _ := directoryCache.Get(services.DirectoryCacheKey, &cached); hit {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success":       true,
				"psychologists": cached,
				"count":         len(cached),
			})
			return
		}
	}

	query := `SELECT ` + publicPsychologistColumns + `
		FROM psychologists
		WHERE is_active = TRUE AND verification_status = $1`
	args := []interface{}{models.VerificationVerified}
	if search != "" {
		query += ` AND (professional_name ILIKE $2 OR specialties ILIKE $2)`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY rating_avg DESC, rating_count DESC LIMIT 100`

	rows, err := database.PostgresDB.Query(query, args...)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	psychologists := []models.Psychologist{}
	for rows.Next() {
		p, err := scanPsychologist(rows)
		if err != nil {
			writeDBError(w, err)
			return
		}
		psychologists = append(psychologists, *p)
	}

	if search == "" {
		_ = directoryCache.Set(services.DirectoryCacheKey, psychologists)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"psychologists": psychologists,
		"count":         len(psychologists),
	})
}

// GetPsychologistProfile returns one public profile with its active clinic
// affiliations and verified credentials
func GetPsychologistProfile(w http.ResponseWriter, r *http.Request) {
	psychologistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid psychologist ID")
		return
	}

	row := database.PostgresDB.QueryRow(`SELECT `+publicPsychologistColumns+`
		FROM psychologists
		WHERE id = $1 AND is_active = TRUE AND verification_status = $2
	`, psychologistID, models.VerificationVerified)
	p, err := scanPsychologist(row)
	if err != nil {
		writeDBError(w, err)
		return
	}

	// Active clinic affiliations (public view filters removed rows)
	clinicRows, err := database.PostgresDB.Query(`
		SELECT c.id, c.name, c.slug, tc.role_label, tc.is_primary
		FROM therapist_clinics tc
		JOIN clinics c ON c.id = tc.clinic_id
		WHERE tc.psychologist_id = $1 AND tc.status = $2
		  AND c.is_active = TRUE AND c.verification_status = $3
	`, psychologistID, models.AffiliationActive, models.ClinicVerified)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer clinicRows.Close()

	clinics := []map[string]interface{}{}
	for clinicRows.Next() {
		var id uuid.UUID
		var name, slug string
		var roleLabel *string
		var isPrimary bool
		if err := clinicRows.Scan(&id, &name, &slug, &roleLabel, &isPrimary); err != nil {
			writeDBError(w, err)
			return
		}
		entry := map[string]interface{}{
			"id":         id.String(),
			"name":       name,
			"slug":       slug,
			"is_primary": isPrimary,
		}
		if roleLabel != nil {
			entry["role_label"] = *roleLabel
		}
		clinics = append(clinics, entry)
	}

	// Verified credentials only; documents themselves are never public
	credRows, err := database.PostgresDB.Query(`
		SELECT id, title, COALESCE(issuer, ''), verification_status, expires_at
		FROM professional_credentials
		WHERE psychologist_id = $1 AND verification_status = $2
	`, psychologistID, models.CredentialVerified)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer credRows.Close()

	credentials := []map[string]interface{}{}
	for credRows.Next() {
		var id uuid.UUID
		var title, issuer, status string
		var expiresAt *time.Time
		if err := credRows.Scan(&id, &title, &issuer, &status, &expiresAt); err != nil {
			writeDBError(w, err)
			return
		}
		credentials = append(credentials, map[string]interface{}{
			"id":                  id.String(),
			"title":               title,
			"issuer":              issuer,
			"verification_status": models.CredentialDisplayStatus(status),
			"expires_at":          expiresAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"psychologist": p,
		"clinics":      clinics,
		"credentials":  credentials,
	})
}

// ListClinics is the public clinic directory
func ListClinics(w http.ResponseWriter, r *http.Request) {
	var cached []models.Clinic
	if hit, _ := directoryCache.Get(services.ClinicDirectoryCacheKey, &cached); hit {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"clinics": cached,
			"count":   len(cached),
		})
		return
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, created_at, updated_at, name, slug, country, COALESCE(city, ''),
		       contact_email, COALESCE(description, ''), verification_status,
		       verified_at, reviewed_by, is_active
		FROM clinics
		WHERE is_active = TRUE AND verification_status = $1
		ORDER BY name ASC
		LIMIT 200
	`, models.ClinicVerified)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	clinics := []models.Clinic{}
	for rows.Next() {
		var c models.Clinic
		if err := rows.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Name, &c.Slug, &c.Country,
			&c.City, &c.ContactEmail, &c.Description, &c.VerificationStatus,
			&c.VerifiedAt, &c.ReviewedBy, &c.IsActive); err != nil {
			writeDBError(w, err)
			return
		}
		clinics = append(clinics, c)
	}

	_ = directoryCache.Set(services.ClinicDirectoryCacheKey, clinics)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"clinics": clinics,
		"count":   len(clinics),
	})
}

// GetClinicBySlug returns one public clinic profile with its active roster
func GetClinicBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var c models.Clinic
	err := database.PostgresDB.QueryRow(`
		SELECT id, created_at, updated_at, name, slug, country, COALESCE(city, ''),
		       contact_email, COALESCE(description, ''), verification_status,
		       verified_at, reviewed_by, is_active
		FROM clinics
		WHERE slug = $1 AND is_active = TRUE AND verification_status = $2
	`, slug, models.ClinicVerified).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Name, &c.Slug,
		&c.Country, &c.City, &c.ContactEmail, &c.Description, &c.VerificationStatus,
		&c.VerifiedAt, &c.ReviewedBy, &c.IsActive)
	if err != nil {
		writeDBError(w, err)
		return
	}

	// Clinic-facing roster: active affiliations with verified psychologists only
	rows, err := database.PostgresDB.Query(`
		SELECT p.id, p.professional_name, COALESCE(p.specialties, ''), p.rating_avg, tc.role_label, tc.is_primary
		FROM therapist_clinics tc
		JOIN psychologists p ON p.id = tc.psychologist_id
		WHERE tc.clinic_id = $1 AND tc.status = $2
		  AND p.is_active = TRUE AND p.verification_status = $3
	`, c.ID, models.AffiliationActive, models.VerificationVerified)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	roster := []map[string]interface{}{}
	for rows.Next() {
		var id uuid.UUID
		var name, specialties string
		var ratingAvg float64
		var roleLabel *string
		var isPrimary bool
		if err := rows.Scan(&id, &name, &specialties, &ratingAvg, &roleLabel, &isPrimary); err != nil {
			writeDBError(w, err)
			return
		}
		entry := map[string]interface{}{
			"id":                id.String(),
			"professional_name": name,
			"specialties":       specialties,
			"rating_avg":        ratingAvg,
			"is_primary":        isPrimary,
		}
		if roleLabel != nil {
			entry["role_label"] = *roleLabel
		}
		roster = append(roster, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"clinic":        c,
		"psychologists": roster,
	})
}

// CreateReview lets a parent rate a verified psychologist. The rating
// aggregate is recomputed in the same transaction as the insert.
func CreateReview(w http.ResponseWriter, r *http.Request) {
	reviewerID, _ := middleware.UserIDFromContext(r.Context())
	psychologistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid psychologist ID")
		return
	}

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	// Only verified, visible profiles can be reviewed
	var exists bool
	err = database.PostgresDB.QueryRow(`
		SELECT TRUE FROM psychologists
		WHERE id = $1 AND is_active = TRUE AND verification_status = $2
	`, psychologistID, models.VerificationVerified).Scan(&exists)
	if err != nil {
		writeDBError(w, err)
		return
	}

	tx, err := database.PostgresDB.Begin()
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer tx.Rollback()

	reviewID := uuid.New()
	_, err = tx.Exec(`
		INSERT INTO reviews (id, reviewer_id, psychologist_id, rating, comment)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	`, reviewID, reviewerID, psychologistID, req.Rating, req.Comment)
	if err != nil {
		writeDBError(w, err)
		return
	}

	_, err = tx.Exec(`
		UPDATE psychologists
		SET rating_avg = sub.avg, rating_count = sub.cnt, updated_at = NOW()
		FROM (
			SELECT AVG(rating)::numeric(3,2) AS avg, COUNT(*) AS cnt
			FROM reviews WHERE psychologist_id = $1
		) sub
		WHERE id = $1
	`, psychologistID)
	if err != nil {
		writeDBError(w, err)
		return
	}

	if err := tx.Commit(); err != nil {
		writeDBError(w, err)
		return
	}

	services.InvalidateDirectoryCache()

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"review": map[string]interface{}{
			"id":              reviewID.String(),
			"psychologist_id": psychologistID.String(),
			"rating":          req.Rating,
			"comment":         req.Comment,
		},
	})
}

// GetReviews lists reviews for a psychologist
func GetReviews(w http.ResponseWriter, r *http.Request) {
	psychologistID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid psychologist ID")
		return
	}

	rows, err := database.PostgresDB.Query(`
		SELECT id, created_at, reviewer_id, psychologist_id, rating, COALESCE(comment, '')
		FROM reviews WHERE psychologist_id = $1
		ORDER BY created_at DESC
		LIMIT 100
	`, psychologistID)
	if err != nil {
		writeDBError(w, err)
		return
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.CreatedAt, &rv.ReviewerID, &rv.PsychologistID, &rv.Rating, &rv.Comment); err != nil {
			writeDBError(w, err)
			return
		}
		reviews = append(reviews, rv)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"reviews": reviews,
		"count":   len(reviews),
	})
}
