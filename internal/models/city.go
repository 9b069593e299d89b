package models

import "time"

// City represents a city managed through the admin backend.
type City struct {
	ID        string     `json:"id"`
	IDVisible int64      `json:"id_visible"`
	Name      string     `json:"name"`
	Active    bool       `json:"active"`
	Deleted   bool       `json:"deleted"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// UploadUser is the account that created the record.
	UploadUser *UserSummary `json:"upload_user,omitempty"`
}
