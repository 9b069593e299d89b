package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/isandov/barrio-admin-be/internal/auth"
	"github.com/isandov/barrio-admin-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles login, token checks and registration.
type AuthHandler struct {
	service services.AuthServiceProvider
	users   services.UserServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthServiceProvider, users services.UserServiceProvider) *AuthHandler {
	return &AuthHandler{service: service, users: users}
}

// LoginPayload is the login request body. Username may also carry the mail
// address.
type LoginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles credential verification and session token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.service.Login(payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed authentication attempt")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// Check reports whether a token is valid. It always answers with a bare
// boolean, never an error.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusOK, false)
		return
	}
	respondJSON(w, http.StatusOK, h.service.VerifyToken(payload.Token))
}

// Register handles new user registration by an authenticated owner.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusUnauthorized)
		return
	}

	var input services.CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.service.Register(input, claims.Subject)
	if err != nil {
		log.Error().Err(err).Str("username", input.Username).Msg("Failed to register user")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, user)
}

// Info returns the authenticated caller's own user record.
func (h *AuthHandler) Info(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetUserByID(claims.Subject)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.Subject).Msg("User from token not found")
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}
