package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isandov/barrio-admin-be/internal/models"
	"github.com/isandov/barrio-admin-be/internal/pagination"
)

// CityListOptions are the filter parameters accepted by the city list query.
type CityListOptions struct {
	ID     string
	Active *bool
	Params pagination.Params
}

// CreateCityInput is the payload for creating a city.
type CreateCityInput struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

// UpdateCityInput is the partial payload for updating a city. Nil fields are
// left untouched.
type UpdateCityInput struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

// CityServiceProvider defines the interface for city services.
type CityServiceProvider interface {
	ListCities(opts CityListOptions) (pagination.Envelope[models.City], error)
	GetCityByID(id string) (models.City, error)
	CreateCity(input CreateCityInput, uploaderID string) (models.City, error)
	UpdateCity(id string, input UpdateCityInput) (models.City, error)
	DeleteCity(id string, actorID string) error
}

// CityService provides business logic for city management.
type CityService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewCityService creates a new CityService.
func NewCityService(db *sql.DB, events EventServiceProvider) *CityService {
	return &CityService{db: db, events: events}
}

// citySortColumns maps query-facing sort property names to columns. Anything
// outside this map is rejected.
var citySortColumns = map[string]string{
	"id":         "c.id",
	"id_visible": "c.id_visible",
	"name":       "c.name",
	"active":     "c.active",
	"created_at": "c.created_at",
}

const citySelect = `
	SELECT c.id, c.id_visible, c.name, c.active, c.deleted, c.created_at, c.deleted_at,
	       u.id, u.username, u.name, u.last_name
	FROM cities c
	LEFT JOIN users u ON u.id = c.upload_user_id`

// scanCity scans a city row produced by citySelect.
func scanCity(scanner interface{ Scan(...interface{}) error }) (models.City, error) {
	var city models.City
	var deletedAt sql.NullTime
	var uID, uUsername, uName, uLastName sql.NullString

	err := scanner.Scan(
		&city.ID, &city.IDVisible, &city.Name, &city.Active, &city.Deleted,
		&city.CreatedAt, &deletedAt,
		&uID, &uUsername, &uName, &uLastName,
	)
	if err != nil {
		return city, err
	}

	if deletedAt.Valid {
		city.DeletedAt = &deletedAt.Time
	}
	if uID.Valid {
		city.UploadUser = &models.UserSummary{
			ID:       uID.String,
			Username: uUsername.String,
			Name:     uName.String,
			LastName: uLastName.String,
		}
	}
	return city, nil
}

// ListCities returns the filtered, optionally paginated city list.
func (s *CityService) ListCities(opts CityListOptions) (pagination.Envelope[models.City], error) {
	var empty pagination.Envelope[models.City]

	filter := pagination.NewFilter("c.")
	if opts.ID != "" {
		filter.Eq("c.id", opts.ID)
	}
	if opts.Active != nil {
		filter.Eq("c.active", *opts.Active)
	}

	var totalRecords int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM cities c"+filter.Where(), filter.Args()...).Scan(&totalRecords)
	if err != nil {
		return empty, err
	}

	orderBy, err := opts.Params.OrderBy("c.id_visible", citySortColumns)
	if err != nil {
		return empty, err
	}

	rows, err := s.db.Query(citySelect+filter.Where()+orderBy+opts.Params.Window(), filter.Args()...)
	if err != nil {
		return empty, err
	}
	defer rows.Close()

	var cities []models.City
	for rows.Next() {
		city, err := scanCity(rows)
		if err != nil {
			return empty, err
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return empty, err
	}

	return pagination.NewEnvelope(cities, opts.Params.Meta(totalRecords)), nil
}

// GetCityByID retrieves a single non-deleted city with its uploader.
func (s *CityService) GetCityByID(id string) (models.City, error) {
	city, err := scanCity(s.db.QueryRow(citySelect+" WHERE c.id = ? AND c.deleted = 0", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.City{}, fmt.Errorf("city %s: %w", id, ErrNotFound)
		}
		return models.City{}, err
	}
	return city, nil
}

// getCityAnyState looks a city up regardless of its soft-delete flag. Update
// and delete go through here so soft-deleted rows stay reachable.
func (s *CityService) getCityAnyState(id string) (models.City, error) {
	city, err := scanCity(s.db.QueryRow(citySelect+" WHERE c.id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.City{}, fmt.Errorf("city %s: %w", id, ErrNotFound)
		}
		return models.City{}, err
	}
	return city, nil
}

// CreateCity creates a city, assigning the next visible id inside the INSERT
// so concurrent creates cannot race on the same number.
func (s *CityService) CreateCity(input CreateCityInput, uploaderID string) (models.City, error) {
	id := uuid.New().String()
	active := true
	if input.Active != nil {
		active = *input.Active
	}

	const query = `
		INSERT INTO cities (id, id_visible, name, active, upload_user_id)
		VALUES (?, (SELECT COALESCE(MAX(id_visible), 0) + 1 FROM cities), ?, ?, ?)`
	if _, err := s.db.Exec(query, id, input.Name, active, uploaderID); err != nil {
		return models.City{}, err
	}

	if err := s.events.CreateEvent("city.create", "info", "city created: "+input.Name, &uploaderID, &id); err != nil {
		return models.City{}, err
	}

	return s.GetCityByID(id)
}

// UpdateCity applies a partial update. Absent fields are not modified.
func (s *CityService) UpdateCity(id string, input UpdateCityInput) (models.City, error) {
	if _, err := s.getCityAnyState(id); err != nil {
		return models.City{}, err
	}

	var sets []string
	var args []any
	if input.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *input.Name)
	}
	if input.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *input.Active)
	}

	if len(sets) > 0 {
		args = append(args, id)
		query := "UPDATE cities SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := s.db.Exec(query, args...); err != nil {
			return models.City{}, err
		}
	}

	return s.getCityAnyState(id)
}

// DeleteCity soft-deletes a city. The row is never physically removed.
func (s *CityService) DeleteCity(id string, actorID string) error {
	if _, err := s.getCityAnyState(id); err != nil {
		return err
	}

	_, err := s.db.Exec("UPDATE cities SET deleted = 1, deleted_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return err
	}

	return s.events.CreateEvent("city.delete", "warn", "city soft-deleted", &actorID, &id)
}
