package handlers

import (
	"net/http"
	"strconv"

	"github.com/isandov/barrio-admin-be/internal/models"
	"github.com/isandov/barrio-admin-be/internal/services"
	"github.com/rs/zerolog/log"
)

// EventHandler exposes the audit event log.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent returns the most recent audit events, newest first.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	events, err := h.service.GetRecentEvents(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve events")
		respondError(w, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	respondJSON(w, http.StatusOK, events)
}
