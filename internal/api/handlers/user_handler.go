package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/isandov/barrio-admin-be/internal/auth"
	"github.com/isandov/barrio-admin-be/internal/pagination"
	"github.com/isandov/barrio-admin-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// List handles the filtered, paginated user list. The id filter matches the
// user-facing visible id.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	active, ok := parseBoolParam(q.Get("active"))
	if !ok {
		http.Error(w, "Invalid active filter", http.StatusBadRequest)
		return
	}
	root, ok := parseBoolParam(q.Get("root"))
	if !ok {
		http.Error(w, "Invalid root filter", http.StatusBadRequest)
		return
	}

	var idVisible int64
	if v := q.Get("id"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "Invalid id filter", http.StatusBadRequest)
			return
		}
		idVisible = parsed
	}

	envelope, err := h.service.ListUsers(services.UserListOptions{
		Name:      q.Get("name"),
		IDVisible: idVisible,
		Mail:      q.Get("mail"),
		Username:  q.Get("username"),
		Active:    active,
		Root:      root,
		Params:    pagination.ParseParams(q),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, envelope)
}

// Get handles retrieving a user by id. The id must be a well-formed UUID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.service.GetUserByID(id)
	if err != nil {
		log.Warn().Err(err).Str("user_id", id).Msg("Failed to get user by ID")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Update handles a partial user update, including the gated password change
// and the city association add/remove sets.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var input services.UpdateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.UpdateUser(id, input)
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to update user")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Delete handles the soft-deletion of a user account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteUser(id, claims.Subject); err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "User removed"})
}
