package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isandov/barrio-admin-be/internal/services"
)

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps service errors onto the HTTP status taxonomy: sentinel
// errors become 401/404, everything else is a 400 carrying the underlying
// message. Every failure is a 4xx; there is no retry or partial success.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}
