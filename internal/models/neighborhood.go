package models

import "time"

// Neighborhood belongs to exactly one City.
type Neighborhood struct {
	ID        string     `json:"id"`
	IDVisible int64      `json:"id_visible"`
	Name      string     `json:"name"`
	CityID    string     `json:"city_id"`
	Active    bool       `json:"active"`
	Deleted   bool       `json:"deleted"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	City       *City        `json:"city,omitempty"`
	UploadUser *UserSummary `json:"upload_user,omitempty"`
}
