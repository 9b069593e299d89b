package services

import (
	"database/sql"
	"testing"

	"github.com/isandov/barrio-admin-be/internal/database"
	"github.com/isandov/barrio-admin-be/internal/models"
	"github.com/stretchr/testify/require"
)

// setupDB opens an in-memory SQLite database with the full schema applied.
// The pool is capped at one connection so every query sees the same memory
// database.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	t.Cleanup(func() { db.Close() })
	return db
}

func setupUserService(t *testing.T) (*UserService, *sql.DB) {
	t.Helper()
	db := setupDB(t)
	events := NewEventService(db)
	return NewUserService(db, events), db
}

// createTestUser inserts a user to act as an uploader for other records.
func createTestUser(t *testing.T, users *UserService, username string) models.User {
	t.Helper()
	user, err := users.CreateUser(CreateUserInput{
		Username: username,
		Mail:     username + "@example.com",
		Password: "secret123",
		Name:     "Carlos",
		LastName: "Gardel",
	}, nil)
	require.NoError(t, err)
	return user
}
