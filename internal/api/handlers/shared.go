package handlers

import (
	"net/http"
	"time"

	"github.com/qifin/lotledger/internal/api/response"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	response.RespondJSON(w, status, data)
}

// respondError sends a structured error response
func respondError(w http.ResponseWriter, status int, message string, details interface{}) {
	response.RespondError(w, status, message, details)
}

// parseDateParam parses an optional ?date= query parameter, defaulting to
// today (UTC) when absent.
func parseDateParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}

	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		date, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, err
		}
	}
	return date.UTC(), nil
}
