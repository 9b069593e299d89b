package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isandov/barrio-admin-be/internal/auth"
	"github.com/isandov/barrio-admin-be/internal/pagination"
	"github.com/isandov/barrio-admin-be/internal/services"
	"github.com/rs/zerolog/log"
)

// NeighborhoodHandler handles HTTP requests for neighborhood management.
type NeighborhoodHandler struct {
	service services.NeighborhoodServiceProvider
}

// NewNeighborhoodHandler creates a new NeighborhoodHandler.
func NewNeighborhoodHandler(service services.NeighborhoodServiceProvider) *NeighborhoodHandler {
	return &NeighborhoodHandler{service: service}
}

// List handles the filtered, paginated neighborhood list.
func (h *NeighborhoodHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	active, ok := parseBoolParam(q.Get("active"))
	if !ok {
		http.Error(w, "Invalid active filter", http.StatusBadRequest)
		return
	}

	envelope, err := h.service.ListNeighborhoods(services.NeighborhoodListOptions{
		ID:     q.Get("id"),
		Name:   q.Get("name"),
		Active: active,
		Params: pagination.ParseParams(q),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list neighborhoods")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope)
}

// Get handles retrieving a neighborhood by its id.
func (h *NeighborhoodHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	neighborhood, err := h.service.GetNeighborhoodByID(id)
	if err != nil {
		log.Warn().Err(err).Str("neighborhood_id", id).Msg("Failed to get neighborhood by ID")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, neighborhood)
}

// Create handles creating a neighborhood stamped with the uploader.
func (h *NeighborhoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusUnauthorized)
		return
	}

	var input services.CreateNeighborhoodInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	neighborhood, err := h.service.CreateNeighborhood(input, claims.Subject)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create neighborhood")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, neighborhood)
}

// Update handles a partial neighborhood update.
func (h *NeighborhoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var input services.UpdateNeighborhoodInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	neighborhood, err := h.service.UpdateNeighborhood(id, input)
	if err != nil {
		log.Error().Err(err).Str("neighborhood_id", id).Msg("Failed to update neighborhood")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, neighborhood)
}

// Delete handles the soft-deletion of a neighborhood.
func (h *NeighborhoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteNeighborhood(id, claims.Subject); err != nil {
		log.Error().Err(err).Str("neighborhood_id", id).Msg("Failed to delete neighborhood")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Neighborhood " + id + " marked as deleted"})
}
