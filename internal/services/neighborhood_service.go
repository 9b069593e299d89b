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

// NeighborhoodListOptions are the filter parameters accepted by the
// neighborhood list query.
type NeighborhoodListOptions struct {
	ID     string
	Name   string
	Active *bool
	Params pagination.Params
}

// CreateNeighborhoodInput is the payload for creating a neighborhood.
type CreateNeighborhoodInput struct {
	Name   string `json:"name"`
	CityID string `json:"cityID"`
	Active *bool  `json:"active"`
}

// UpdateNeighborhoodInput is the partial payload for updating a neighborhood.
type UpdateNeighborhoodInput struct {
	Name   *string `json:"name"`
	CityID *string `json:"cityID"`
	Active *bool   `json:"active"`
}

// NeighborhoodServiceProvider defines the interface for neighborhood services.
type NeighborhoodServiceProvider interface {
	ListNeighborhoods(opts NeighborhoodListOptions) (pagination.Envelope[models.Neighborhood], error)
	GetNeighborhoodByID(id string) (models.Neighborhood, error)
	CreateNeighborhood(input CreateNeighborhoodInput, uploaderID string) (models.Neighborhood, error)
	UpdateNeighborhood(id string, input UpdateNeighborhoodInput) (models.Neighborhood, error)
	DeleteNeighborhood(id string, actorID string) error
}

// NeighborhoodService provides business logic for neighborhood management.
type NeighborhoodService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewNeighborhoodService creates a new NeighborhoodService.
func NewNeighborhoodService(db *sql.DB, events EventServiceProvider) *NeighborhoodService {
	return &NeighborhoodService{db: db, events: events}
}

var neighborhoodSortColumns = map[string]string{
	"id":         "n.id",
	"id_visible": "n.id_visible",
	"name":       "n.name",
	"active":     "n.active",
	"created_at": "n.created_at",
}

const neighborhoodSelect = `
	SELECT n.id, n.id_visible, n.name, n.city_id, n.active, n.deleted, n.created_at, n.deleted_at,
	       ci.id, ci.id_visible, ci.name, ci.active, ci.deleted, ci.created_at,
	       u.id, u.username, u.name, u.last_name
	FROM neighborhoods n
	LEFT JOIN cities ci ON ci.id = n.city_id
	LEFT JOIN users u ON u.id = n.upload_user_id`

func scanNeighborhood(scanner interface{ Scan(...interface{}) error }) (models.Neighborhood, error) {
	var n models.Neighborhood
	var deletedAt sql.NullTime
	var cID, cName sql.NullString
	var cIDVisible sql.NullInt64
	var cActive, cDeleted sql.NullBool
	var cCreatedAt sql.NullTime
	var uID, uUsername, uName, uLastName sql.NullString

	err := scanner.Scan(
		&n.ID, &n.IDVisible, &n.Name, &n.CityID, &n.Active, &n.Deleted,
		&n.CreatedAt, &deletedAt,
		&cID, &cIDVisible, &cName, &cActive, &cDeleted, &cCreatedAt,
		&uID, &uUsername, &uName, &uLastName,
	)
	if err != nil {
		return n, err
	}

	if deletedAt.Valid {
		n.DeletedAt = &deletedAt.Time
	}
	if cID.Valid {
		n.City = &models.City{
			ID:        cID.String,
			IDVisible: cIDVisible.Int64,
			Name:      cName.String,
			Active:    cActive.Bool,
			Deleted:   cDeleted.Bool,
			CreatedAt: cCreatedAt.Time,
		}
	}
	if uID.Valid {
		n.UploadUser = &models.UserSummary{
			ID:       uID.String,
			Username: uUsername.String,
			Name:     uName.String,
			LastName: uLastName.String,
		}
	}
	return n, nil
}

// ListNeighborhoods returns the filtered, optionally paginated list with the
// owning city and uploader included.
func (s *NeighborhoodService) ListNeighborhoods(opts NeighborhoodListOptions) (pagination.Envelope[models.Neighborhood], error) {
	var empty pagination.Envelope[models.Neighborhood]

	filter := pagination.NewFilter("n.")
	if opts.ID != "" {
		filter.Eq("n.id", opts.ID)
	}
	if opts.Name != "" {
		filter.Contains("n.name", opts.Name)
	}
	if opts.Active != nil {
		filter.Eq("n.active", *opts.Active)
	}

	var totalRecords int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM neighborhoods n"+filter.Where(), filter.Args()...).Scan(&totalRecords)
	if err != nil {
		return empty, err
	}

	orderBy, err := opts.Params.OrderBy("n.id_visible", neighborhoodSortColumns)
	if err != nil {
		return empty, err
	}

	rows, err := s.db.Query(neighborhoodSelect+filter.Where()+orderBy+opts.Params.Window(), filter.Args()...)
	if err != nil {
		return empty, err
	}
	defer rows.Close()

	var neighborhoods []models.Neighborhood
	for rows.Next() {
		n, err := scanNeighborhood(rows)
		if err != nil {
			return empty, err
		}
		neighborhoods = append(neighborhoods, n)
	}
	if err := rows.Err(); err != nil {
		return empty, err
	}

	return pagination.NewEnvelope(neighborhoods, opts.Params.Meta(totalRecords)), nil
}

// GetNeighborhoodByID retrieves a single non-deleted neighborhood.
func (s *NeighborhoodService) GetNeighborhoodByID(id string) (models.Neighborhood, error) {
	n, err := scanNeighborhood(s.db.QueryRow(neighborhoodSelect+" WHERE n.id = ? AND n.deleted = 0", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Neighborhood{}, fmt.Errorf("neighborhood %s: %w", id, ErrNotFound)
		}
		return models.Neighborhood{}, err
	}
	return n, nil
}

func (s *NeighborhoodService) getNeighborhoodAnyState(id string) (models.Neighborhood, error) {
	n, err := scanNeighborhood(s.db.QueryRow(neighborhoodSelect+" WHERE n.id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Neighborhood{}, fmt.Errorf("neighborhood %s: %w", id, ErrNotFound)
		}
		return models.Neighborhood{}, err
	}
	return n, nil
}

// CreateNeighborhood creates a neighborhood under a city. The visible id is
// assigned inside the INSERT so concurrent creates cannot race.
func (s *NeighborhoodService) CreateNeighborhood(input CreateNeighborhoodInput, uploaderID string) (models.Neighborhood, error) {
	id := uuid.New().String()
	active := true
	if input.Active != nil {
		active = *input.Active
	}

	const query = `
		INSERT INTO neighborhoods (id, id_visible, name, city_id, active, upload_user_id)
		VALUES (?, (SELECT COALESCE(MAX(id_visible), 0) + 1 FROM neighborhoods), ?, ?, ?, ?)`
	if _, err := s.db.Exec(query, id, input.Name, input.CityID, active, uploaderID); err != nil {
		return models.Neighborhood{}, err
	}

	if err := s.events.CreateEvent("neighborhood.create", "info", "neighborhood created: "+input.Name, &uploaderID, &id); err != nil {
		return models.Neighborhood{}, err
	}

	return s.GetNeighborhoodByID(id)
}

// UpdateNeighborhood applies a partial update. Absent fields are not modified.
func (s *NeighborhoodService) UpdateNeighborhood(id string, input UpdateNeighborhoodInput) (models.Neighborhood, error) {
	if _, err := s.getNeighborhoodAnyState(id); err != nil {
		return models.Neighborhood{}, err
	}

	var sets []string
	var args []any
	if input.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *input.Name)
	}
	if input.CityID != nil {
		sets = append(sets, "city_id = ?")
		args = append(args, *input.CityID)
	}
	if input.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *input.Active)
	}

	if len(sets) > 0 {
		args = append(args, id)
		query := "UPDATE neighborhoods SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := s.db.Exec(query, args...); err != nil {
			return models.Neighborhood{}, err
		}
	}

	return s.getNeighborhoodAnyState(id)
}

// DeleteNeighborhood soft-deletes a neighborhood.
func (s *NeighborhoodService) DeleteNeighborhood(id string, actorID string) error {
	if _, err := s.getNeighborhoodAnyState(id); err != nil {
		return err
	}

	_, err := s.db.Exec("UPDATE neighborhoods SET deleted = 1, deleted_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return err
	}

	return s.events.CreateEvent("neighborhood.delete", "warn", "neighborhood soft-deleted", &actorID, &id)
}
