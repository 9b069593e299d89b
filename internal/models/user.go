package models

import "time"

// User represents an account in the system.
type User struct {
	ID           string     `json:"id"`
	IDVisible    int64      `json:"id_visible"`
	Username     string     `json:"username"`
	Mail         string     `json:"mail"`
	PasswordHash string     `json:"-"` // Never expose this to the client
	Name         string     `json:"name"`
	LastName     string     `json:"last_name"`
	Root         bool       `json:"root"`
	Active       bool       `json:"active"`
	Deleted      bool       `json:"deleted"`
	OTP          bool       `json:"otp"`
	CreatedBy    *string    `json:"created_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`

	// Cities the user is linked to through user_cities. Only active,
	// non-deleted cities are loaded.
	Cities []City `json:"cities"`
}

// UserSummary is the trimmed uploader reference embedded in other resources.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
}

// Summary returns the embeddable view of the user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Name: u.Name, LastName: u.LastName}
}
