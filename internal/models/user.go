package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleParent      = "parent"
	RoleTherapist   = "therapist"
	RoleClinicAdmin = "clinic_admin"
	RoleAdmin       = "admin"
)

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleParent, RoleTherapist, RoleClinicAdmin, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never returned in JSON
	Name         string `json:"name"`
	Role         string `json:"role"`
	IsActive     bool   `json:"is_active"`
}

type LegalAcceptance struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Document   string    `json:"document"`
	Version    string    `json:"version"`
	AcceptedAt time.Time `json:"accepted_at"`
}
