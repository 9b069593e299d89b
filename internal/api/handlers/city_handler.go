package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/isandov/barrio-admin-be/internal/auth"
	"github.com/isandov/barrio-admin-be/internal/pagination"
	"github.com/isandov/barrio-admin-be/internal/services"
	"github.com/rs/zerolog/log"
)

// CityHandler handles HTTP requests for city management.
type CityHandler struct {
	service services.CityServiceProvider
}

// NewCityHandler creates a new CityHandler.
func NewCityHandler(service services.CityServiceProvider) *CityHandler {
	return &CityHandler{service: service}
}

// parseBoolParam reads an optional boolean query parameter. A missing value
// yields nil; a malformed one is reported to the caller.
func parseBoolParam(q string) (*bool, bool) {
	if q == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(q)
	if err != nil {
		return nil, false
	}
	return &b, true
}

// List handles the filtered, paginated city list.
func (h *CityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	active, ok := parseBoolParam(q.Get("active"))
	if !ok {
		http.Error(w, "Invalid active filter", http.StatusBadRequest)
		return
	}

	envelope, err := h.service.ListCities(services.CityListOptions{
		ID:     q.Get("id"),
		Active: active,
		Params: pagination.ParseParams(q),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list cities")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope)
}

// Get handles retrieving a city by its id.
func (h *CityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	city, err := h.service.GetCityByID(id)
	if err != nil {
		log.Warn().Err(err).Str("city_id", id).Msg("Failed to get city by ID")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, city)
}

// Create handles creating a city stamped with the uploader.
func (h *CityHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusUnauthorized)
		return
	}

	var input services.CreateCityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	city, err := h.service.CreateCity(input, claims.Subject)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create city")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, city)
}

// Update handles a partial city update.
func (h *CityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var input services.UpdateCityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	city, err := h.service.UpdateCity(id, input)
	if err != nil {
		log.Error().Err(err).Str("city_id", id).Msg("Failed to update city")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, city)
}

// Delete handles the soft-deletion of a city.
func (h *CityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteCity(id, claims.Subject); err != nil {
		log.Error().Err(err).Str("city_id", id).Msg("Failed to delete city")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "City " + id + " marked as deleted"})
}
