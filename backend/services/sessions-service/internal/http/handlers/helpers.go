package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Errors    []string  `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError writes the standard error body.
func WriteError(w http.ResponseWriter, status int, messages ...string) {
	if len(messages) == 0 {
		messages = []string{http.StatusText(status)}
	}
	writeJSON(w, status, errorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Errors:    messages,
	})
}
