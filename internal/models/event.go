package models

import "time"

// Event is an audit log entry recorded alongside write operations.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	ActorID   *string   `json:"actor_id,omitempty"`
	EntityID  *string   `json:"entity_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
