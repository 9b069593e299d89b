package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isandov/barrio-admin-be/internal/models"
	"github.com/isandov/barrio-admin-be/internal/pagination"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt work factor applied to every stored password.
const passwordCost = 12

// UserListOptions are the filter parameters accepted by the user list query.
// IDVisible matches the user-facing sequential id, not the primary key.
type UserListOptions struct {
	Name      string
	IDVisible int64
	Mail      string
	Username  string
	Active    *bool
	Root      *bool
	Params    pagination.Params
}

// CreateUserInput is the payload for registering a user. CityIDs are the
// initial user-city links, created in the same transaction as the user row.
type CreateUserInput struct {
	Username string   `json:"username"`
	Mail     string   `json:"mail"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	LastName string   `json:"last_name"`
	Root     bool     `json:"root"`
	Active   *bool    `json:"active"`
	CityIDs  []string `json:"updateCityID"`
}

// UpdateUserInput is the partial payload for updating a user. A password
// change must carry the old password; the city add/remove sets are applied in
// the same transaction as the field update.
type UpdateUserInput struct {
	Username       *string  `json:"username"`
	Mail           *string  `json:"mail"`
	Name           *string  `json:"name"`
	LastName       *string  `json:"last_name"`
	Active         *bool    `json:"active"`
	Root           *bool    `json:"root"`
	OTP            *bool    `json:"otp"`
	Password       *string  `json:"password"`
	OldPassword    *string  `json:"old_password"`
	UpdateCityIDs  []string `json:"updateCityID"`
	DeletedCityIDs []string `json:"deletedCityID"`
}

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	ListUsers(opts UserListOptions) (pagination.Envelope[models.User], error)
	GetUserByID(id string) (models.User, error)
	GetUserByUsernameOrMail(value string) (models.User, error)
	CreateUser(input CreateUserInput, createdBy *string) (models.User, error)
	UpdateUser(id string, input UpdateUserInput) (models.User, error)
	DeleteUser(id string, actorID string) error
}

// UserService provides business logic for user management.
type UserService struct {
	db     *sql.DB
	events EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, events EventServiceProvider) *UserService {
	return &UserService{db: db, events: events}
}

var userSortColumns = map[string]string{
	"id":         "id",
	"id_visible": "id_visible",
	"username":   "username",
	"mail":       "mail",
	"name":       "name",
	"last_name":  "last_name",
	"active":     "active",
	"created_at": "created_at",
}

const userSelect = `
	SELECT id, id_visible, username, mail, password_hash, name, last_name,
	       root, active, deleted, otp, created_by, created_at, deleted_at
	FROM users`

// scanUser scans a user row produced by userSelect. The password hash stays
// on the struct for internal use; the json tag keeps it out of responses.
func scanUser(scanner interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	var name, lastName, createdBy sql.NullString
	var deletedAt sql.NullTime

	err := scanner.Scan(
		&user.ID, &user.IDVisible, &user.Username, &user.Mail, &user.PasswordHash,
		&name, &lastName, &user.Root, &user.Active, &user.Deleted, &user.OTP,
		&createdBy, &user.CreatedAt, &deletedAt,
	)
	if err != nil {
		return user, err
	}

	user.Name = name.String
	user.LastName = lastName.String
	if createdBy.Valid {
		user.CreatedBy = &createdBy.String
	}
	if deletedAt.Valid {
		user.DeletedAt = &deletedAt.Time
	}
	return user, nil
}

// loadCities attaches each user's active, non-deleted cities through the
// user_cities join table.
func (s *UserService) loadCities(users []models.User) error {
	if len(users) == 0 {
		return nil
	}

	placeholders := make([]string, len(users))
	args := make([]any, len(users))
	index := make(map[string]int, len(users))
	for i := range users {
		placeholders[i] = "?"
		args[i] = users[i].ID
		index[users[i].ID] = i
		users[i].Cities = []models.City{}
	}

	query := `
		SELECT uc.user_id, c.id, c.id_visible, c.name, c.active, c.deleted, c.created_at
		FROM user_cities uc
		JOIN cities c ON c.id = uc.city_id
		WHERE c.active = 1 AND c.deleted = 0 AND uc.user_id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var city models.City
		if err := rows.Scan(&userID, &city.ID, &city.IDVisible, &city.Name, &city.Active, &city.Deleted, &city.CreatedAt); err != nil {
			return err
		}
		if i, ok := index[userID]; ok {
			users[i].Cities = append(users[i].Cities, city)
		}
	}
	return rows.Err()
}

// ListUsers returns the filtered, optionally paginated user list with city
// associations included.
func (s *UserService) ListUsers(opts UserListOptions) (pagination.Envelope[models.User], error) {
	var empty pagination.Envelope[models.User]

	filter := pagination.NewFilter("")
	if opts.Name != "" {
		filter.ContainsAny(opts.Name, "name", "last_name")
	}
	if opts.IDVisible > 0 {
		filter.Eq("id_visible", opts.IDVisible)
	}
	if opts.Mail != "" {
		filter.Contains("mail", opts.Mail)
	}
	if opts.Username != "" {
		filter.Contains("username", opts.Username)
	}
	if opts.Active != nil {
		filter.Eq("active", *opts.Active)
	}
	if opts.Root != nil {
		filter.Eq("root", *opts.Root)
	}

	var totalRecords int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM users"+filter.Where(), filter.Args()...).Scan(&totalRecords)
	if err != nil {
		return empty, err
	}

	orderBy, err := opts.Params.OrderBy("id_visible", userSortColumns)
	if err != nil {
		return empty, err
	}

	rows, err := s.db.Query(userSelect+filter.Where()+orderBy+opts.Params.Window(), filter.Args()...)
	if err != nil {
		return empty, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return empty, err
		}
		user.PasswordHash = ""
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return empty, err
	}

	if err := s.loadCities(users); err != nil {
		return empty, err
	}

	return pagination.NewEnvelope(users, opts.Params.Meta(totalRecords)), nil
}

// GetUserByID retrieves a single non-deleted user with city associations.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow(userSelect+" WHERE id = ? AND deleted = 0", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return models.User{}, err
	}

	user.PasswordHash = ""
	users := []models.User{user}
	if err := s.loadCities(users); err != nil {
		return models.User{}, err
	}
	return users[0], nil
}

// GetUserByUsernameOrMail retrieves a non-deleted user matching either field.
// The password hash is kept on the struct for credential verification.
func (s *UserService) GetUserByUsernameOrMail(value string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow(userSelect+" WHERE (username = ? OR mail = ?) AND deleted = 0", value, value))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("user %s: %w", value, ErrNotFound)
		}
		return models.User{}, err
	}

	users := []models.User{user}
	if err := s.loadCities(users); err != nil {
		return models.User{}, err
	}
	return users[0], nil
}

// getUserAnyState looks a user up regardless of the soft-delete flag,
// password hash included.
func (s *UserService) getUserAnyState(id string) (models.User, error) {
	user, err := scanUser(s.db.QueryRow(userSelect+" WHERE id = ?", id))
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateUser creates a user, hashing the password and linking any initial
// cities in the same transaction as the user row.
func (s *UserService) CreateUser(input CreateUserInput, createdBy *string) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New().String()
	active := true
	if input.Active != nil {
		active = *input.Active
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	const insertUser = `
		INSERT INTO users (id, id_visible, username, mail, password_hash, name, last_name, root, active, created_by)
		VALUES (?, (SELECT COALESCE(MAX(id_visible), 0) + 1 FROM users), ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.Exec(insertUser, id, input.Username, input.Mail, string(hashedPassword),
		input.Name, input.LastName, input.Root, active, createdBy)
	if err != nil {
		return models.User{}, err
	}

	for _, cityID := range input.CityIDs {
		if _, err := tx.Exec("INSERT INTO user_cities (user_id, city_id) VALUES (?, ?)", id, cityID); err != nil {
			return models.User{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}

	if err := s.events.CreateEvent("user.create", "info", "user created: "+input.Username, createdBy, &id); err != nil {
		return models.User{}, err
	}

	return s.GetUserByID(id)
}

// UpdateUser applies a partial update. A password change is gated on the old
// password verifying against the stored hash; the city add/remove sets are
// reconciled in the same transaction as the field update.
func (s *UserService) UpdateUser(id string, input UpdateUserInput) (models.User, error) {
	user, err := s.getUserAnyState(id)
	if err != nil {
		return models.User{}, err
	}

	var sets []string
	var args []any

	if input.OldPassword != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(*input.OldPassword)); err != nil {
			return models.User{}, fmt.Errorf("wrong password: %w", ErrUnauthenticated)
		}
		if input.Password == nil {
			return models.User{}, fmt.Errorf("missing new password")
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), passwordCost)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to hash new password: %w", err)
		}
		sets = append(sets, "password_hash = ?")
		args = append(args, string(hashedPassword))
	}

	if input.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, *input.Username)
	}
	if input.Mail != nil {
		sets = append(sets, "mail = ?")
		args = append(args, *input.Mail)
	}
	if input.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *input.Name)
	}
	if input.LastName != nil {
		sets = append(sets, "last_name = ?")
		args = append(args, *input.LastName)
	}
	if input.Active != nil {
		sets = append(sets, "active = ?")
		args = append(args, *input.Active)
	}
	if input.Root != nil {
		sets = append(sets, "root = ?")
		args = append(args, *input.Root)
	}
	if input.OTP != nil {
		sets = append(sets, "otp = ?")
		args = append(args, *input.OTP)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	if len(sets) > 0 {
		args = append(args, id)
		query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := tx.Exec(query, args...); err != nil {
			return models.User{}, err
		}
	}

	for _, cityID := range input.UpdateCityIDs {
		if _, err := tx.Exec("INSERT OR IGNORE INTO user_cities (user_id, city_id) VALUES (?, ?)", id, cityID); err != nil {
			return models.User{}, err
		}
	}
	for _, cityID := range input.DeletedCityIDs {
		if _, err := tx.Exec("DELETE FROM user_cities WHERE user_id = ? AND city_id = ?", id, cityID); err != nil {
			return models.User{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}

	return s.GetUserByID(id)
}

// DeleteUser soft-deletes a user. The row is never physically removed.
func (s *UserService) DeleteUser(id string, actorID string) error {
	if _, err := s.getUserAnyState(id); err != nil {
		return err
	}

	_, err := s.db.Exec("UPDATE users SET deleted = 1, deleted_at = ? WHERE id = ?", time.Now().UTC(), id)
	if err != nil {
		return err
	}

	return s.events.CreateEvent("user.delete", "warn", "user soft-deleted", &actorID, &id)
}
