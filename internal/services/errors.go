package services

import "errors"

// Sentinel errors mapped to HTTP statuses by the handlers. Everything else
// coming out of a service is treated as a generic bad request carrying the
// underlying message.
var (
	// ErrUnauthenticated covers missing credentials, unknown users and wrong
	// passwords alike, so callers cannot distinguish the cases.
	ErrUnauthenticated = errors.New("invalid credentials")

	// ErrNotFound marks an entity that is absent or soft-deleted.
	ErrNotFound = errors.New("not found")
)
