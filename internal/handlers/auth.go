package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurtura-health/nurtura-backend/internal/database"
	"github.com/nurtura-health/nurtura-backend/internal/middleware"
	"github.com/nurtura-health/nurtura-backend/internal/models"
	"github.com/nurtura-health/nurtura-backend/internal/services"
	"github.com/nurtura-health/nurtura-backend/pkg/utils"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address and fits the column.
func ValidEmail(s string) bool {
	return len(s) <= 255 && emailRegex.MatchString(s)
}

// Signup Request
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	// Legal acceptance recorded at signup
	TermsVersion   string `json:"terms_version,omitempty"`
	PrivacyVersion string `json:"privacy_version,omitempty"`
}

// Signin Request
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Auth Response
type AuthResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	User    map[string]interface{} `json:"user,omitempty"`
	Token   string                 `json:"token,omitempty"`
}

// Signup handles parent registration. Every self-service signup gets the
// parent role; other roles are only assigned by an admin or through invite
// acceptance.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}
	if !ValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email address")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters long")
		return
	}

	// Check if user already exists
	var existingEmail string
	err := database.PostgresDB.QueryRow("SELECT email FROM users WHERE email = $1", req.Email).Scan(&existingEmail)
	if err == nil {
		writeError(w, http.StatusConflict, "User with this email already exists")
		return
	} else if err != sql.ErrNoRows {
		writeDBError(w, err)
		return
	}

	// Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	// Create user
	userID := uuid.New()
	now := time.Now()

	_, err = database.PostgresDB.Exec(`
		INSERT INTO users (id, created_at, updated_at, email, password_hash, name, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, userID, now, now, req.Email, hashedPassword, req.Name, models.RoleParent, true)
	if err != nil {
		writeDBError(w, err)
		return
	}

	// Record legal acceptances when versions were supplied
	for document, version := range map[string]string{
		"terms":   req.TermsVersion,
		"privacy": req.PrivacyVersion,
	} {
		if version == "" {
			continue
		}
		_, _ = database.PostgresDB.Exec(`
			INSERT INTO legal_acceptances (user_id, document, version)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, document, version) DO NOTHING
		`, userID, document, version)
	}

	token, err := services.IssueAuthToken(userID, models.RoleParent)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User: map[string]interface{}{
			"id":         userID.String(),
			"name":       req.Name,
			"email":      req.Email,
			"role":       models.RoleParent,
			"created_at": now,
		},
		Token: token,
	})
}

// Signin handles login for every role
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	var userID uuid.UUID
	var name, email, passwordHash, role string
	var isActive bool
	var createdAt time.Time

	err := database.PostgresDB.QueryRow(`
		SELECT id, created_at, name, email, password_hash, role, is_active
		FROM users WHERE email = $1
	`, req.Email).Scan(&userID, &createdAt, &name, &email, &passwordHash, &role, &isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		} else {
			writeDBError(w, err)
		}
		return
	}

	if !isActive {
		writeError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := services.IssueAuthToken(userID, role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		User: map[string]interface{}{
			"id":         userID.String(),
			"name":       name,
			"email":      email,
			"role":       role,
			"created_at": createdAt,
		},
		Token: token,
	})
}

// GetMe returns the authenticated user's own profile
func GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var name, email, role string
	var isActive bool
	var createdAt time.Time
	err := database.PostgresDB.QueryRow(`
		SELECT created_at, name, email, role, is_active
		FROM users WHERE id = $1
	`, userID).Scan(&createdAt, &name, &email, &role, &isActive)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":         userID.String(),
			"name":       name,
			"email":      email,
			"role":       role,
			"is_active":  isActive,
			"created_at": createdAt,
		},
	})
}

// AcceptLegal records acceptance of a legal document version
func AcceptLegal(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req struct {
		Document string `json:"document"`
		Version  string `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Document == "" || req.Version == "" {
		writeError(w, http.StatusBadRequest, "Document and version are required")
		return
	}

	_, err := database.PostgresDB.Exec(`
		INSERT INTO legal_acceptances (user_id, document, version)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, document, version) DO NOTHING
	`, userID, req.Document, req.Version)
	if err != nil {
		writeDBError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Acceptance recorded",
	})
}
