package http

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform JSON response shape used by all API endpoints.
type Envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteOK writes a bare success envelope.
func WriteOK(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, Envelope{OK: true})
}

// WriteError writes a failure envelope with the given status code and
// user-facing message. The message must never carry internal error text.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{OK: false, Error: message})
}
