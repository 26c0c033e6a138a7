package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"github.com/lib/pq"
)

// Postgres error codes worth mapping to client-facing statuses
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// writeDBError maps persistence failures onto the API error taxonomy:
// missing rows → 404, unique violations → 409, FK violations → a generic
// 400 so clients never learn schema details, everything else → 500.
func writeDBError(w http.ResponseWriter, err error) {
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			writeError(w, http.StatusConflict, "Resource already exists")
			return
		case pgForeignKeyViolation:
			writeError(w, http.StatusBadRequest, "Invalid reference")
			return
		}
	}
	log.Printf("ERROR: database operation failed: %v", err)
	writeError(w, http.StatusInternalServerError, "Database error")
}
