package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isandov/barrio-admin-be/internal/auth"
	"github.com/isandov/barrio-admin-be/internal/database"
	"github.com/isandov/barrio-admin-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRouter wires the full stack against an in-memory database, with the
// root user seeded.
func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	auth.SetSigningKey("test-secret")

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, eventService)
	cityService := services.NewCityService(db, eventService)
	neighborhoodService := services.NewNeighborhoodService(db, eventService)
	authService := services.NewAuthService(userService, eventService)
	require.NoError(t, authService.Bootstrap("admin", "admin@admin.com", "initial-pass"))

	return NewRouter(authService, userService, cityService, neighborhoodService, eventService)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin",
		"password": "initial-pass",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.User.Username)
	return resp.Token
}

func TestLoginAndTokenCheck(t *testing.T) {
	router := setupRouter(t)
	token := login(t, router)

	rec := doJSON(t, router, http.MethodPost, "/auth/check", "", map[string]string{"token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", string(bytes.TrimSpace(rec.Body.Bytes())))

	rec = doJSON(t, router, http.MethodPost, "/auth/check", "", map[string]string{"token": "bogus"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "false", string(bytes.TrimSpace(rec.Body.Bytes())))
}

func TestLoginFailuresAreUnauthorized(t *testing.T) {
	router := setupRouter(t)

	for _, body := range []map[string]string{
		{"username": "admin", "password": "wrong"},
		{"username": "nobody", "password": "initial-pass"},
		{"username": "", "password": "initial-pass"},
	} {
		rec := doJSON(t, router, http.MethodPost, "/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestUsersRequireAuthentication(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/users/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := login(t, router)
	rec = doJSON(t, router, http.MethodGet, "/users/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []struct {
			Username string `json:"username"`
		} `json:"data"`
		Metadata struct {
			TotalRecords int64 `json:"totalRecords"`
		} `json:"metadata"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "admin", envelope.Data[0].Username)
	assert.Equal(t, int64(1), envelope.Metadata.TotalRecords)
}

func TestCityLifecycleOverHTTP(t *testing.T) {
	router := setupRouter(t)
	token := login(t, router)

	// Creating a city requires authentication.
	rec := doJSON(t, router, http.MethodPost, "/city/", "", map[string]interface{}{"name": "Rosario"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/city/", token, map[string]interface{}{"name": "Rosario"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var city struct {
		ID         string `json:"id"`
		IDVisible  int64  `json:"id_visible"`
		UploadUser *struct {
			Username string `json:"username"`
		} `json:"upload_user"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&city))
	assert.Equal(t, int64(1), city.IDVisible)
	require.NotNil(t, city.UploadUser)
	assert.Equal(t, "admin", city.UploadUser.Username)

	// The list is public.
	rec = doJSON(t, router, http.MethodGet, "/city/?page=1&perPage=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Soft delete, then the public lookup 404s.
	rec = doJSON(t, router, http.MethodDelete, "/city/"+city.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/city/"+city.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterAndInfo(t *testing.T) {
	router := setupRouter(t)
	token := login(t, router)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", token, map[string]interface{}{
		"username": "gardel",
		"mail":     "gardel@example.com",
		"password": "secret123",
		"name":     "Carlos",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = doJSON(t, router, http.MethodGet, "/auth/info", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Username string `json:"username"`
		Root     bool   `json:"root"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	assert.Equal(t, "admin", me.Username)
	assert.True(t, me.Root)
}

func TestHealthEndpoint(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
