package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the uniform response shape used by every handler.
// Non-2xx responses carry no Data.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondSuccess sends a success envelope with the given message and payload.
func RespondSuccess(w http.ResponseWriter, message string, data any, statusCode int) {
	RespondJSON(w, Envelope{Success: true, Message: message, Data: data}, statusCode)
}

// RespondError sends a failure envelope with a human-readable message only.
// Internal detail stays in the server logs.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, Envelope{Success: false, Message: message}, statusCode)
}
