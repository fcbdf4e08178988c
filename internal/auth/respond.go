// ABOUTME: Structured JSON error responses for authentication and authorization failures
// ABOUTME: Bodies are fixed strings so failure causes are not observable by callers

package auth

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the JSON body for authentication/authorization failures.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteUnauthenticated emits the 401 response used for every
// not-authenticated outcome. Malformed, expired, and missing tokens all
// produce this same body so probing cannot distinguish them.
func WriteUnauthenticated(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
}

// WriteForbidden emits the 403 response used when an authenticated principal
// lacks a required role. The required roles are not enumerated.
func WriteForbidden(w http.ResponseWriter) {
	writeJSON(w, http.StatusForbidden, errorResponse{Error: "insufficient permissions"})
}
