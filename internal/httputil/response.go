package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// APIResponse is the envelope every endpoint answers with. Handlers that
// return payloads embed this and add their own fields.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
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

// RespondSuccess sends a success envelope with a human-readable message.
func RespondSuccess(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, APIResponse{Success: true, Message: message}, statusCode)
}

// RespondError sends a failure envelope with a machine-readable code.
// Only the coarse message is exposed; internal detail stays in the logs.
func RespondError(w http.ResponseWriter, message string, code string, statusCode int) {
	RespondJSON(w, APIResponse{Success: false, Message: message, Code: code}, statusCode)
}
