package app

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/klabast/wb-services/holiday-lookup/internal/holiday"
)

// RequireMethod validates that the request uses the specified HTTP method
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// ParseTargetDate parses a YYYY-MM-DD date; an empty string means today
func ParseTargetDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return holiday.Day(now), nil
	}
	return time.Parse(holiday.ISOLayout, s)
}

// writeJSON encodes v as the response body and logs encoding failures
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		Logger.Errorf("Error encoding response: %v", err)
		http.Error(w, ErrInternalServer, http.StatusInternalServerError)
	}
}

// sourceParam returns the requested source name or the configured default
func sourceParam(r *http.Request) string {
	if name := r.URL.Query().Get("source"); name != "" {
		return name
	}
	return Source
}
