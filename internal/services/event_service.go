package services

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/isandov/barrio-admin-be/internal/models"
)

// EventServiceProvider defines the interface for the audit event log.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, actorID, entityID *string) error
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService records audit events alongside write operations.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(eventType, level, message string, actorID, entityID *string) error {
	stmt, err := s.db.Prepare("INSERT INTO events (id, type, level, message, actor_id, entity_id) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(uuid.New().String(), eventType, level, message, actorID, entityID)
	return err
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, actor_id, entity_id, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		var actorID, entityID sql.NullString
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &actorID, &entityID, &event.CreatedAt); err != nil {
			return nil, err
		}
		if actorID.Valid {
			event.ActorID = &actorID.String
		}
		if entityID.Valid {
			event.EntityID = &entityID.String
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
