// Package handlers implements the HTTP surface of the stub CompVerse API
// server. The stub mirrors the production contract closely enough that the
// client packages can run against it unchanged.
package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error-field envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DetailResponse is the detail-field envelope, used for auth and
// permission failures.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// respondJSON sends a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// respondError sends an error response in the error envelope.
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondDetail sends an error response in the detail envelope.
func respondDetail(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, DetailResponse{Detail: message})
}
