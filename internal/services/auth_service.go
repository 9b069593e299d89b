package services

import (
	"errors"
	"fmt"

	"github.com/isandov/barrio-admin-be/internal/auth"
	"github.com/isandov/barrio-admin-be/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthServiceProvider defines the interface for the authentication flow.
type AuthServiceProvider interface {
	Bootstrap(username, mail, password string) error
	Login(usernameOrMail, password string) (models.User, string, error)
	Register(input CreateUserInput, ownerID string) (models.User, error)
	VerifyToken(token string) bool
}

// AuthService implements login, registration and the root-user bootstrap on
// top of the user service. Sessions are stateless signed tokens; nothing is
// persisted per session.
type AuthService struct {
	users  UserServiceProvider
	events EventServiceProvider
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserServiceProvider, events EventServiceProvider) *AuthService {
	return &AuthService{users: users, events: events}
}

// Bootstrap ensures the designated root account exists. The lookup precedes
// the create, so running it twice never produces a duplicate.
func (s *AuthService) Bootstrap(username, mail, password string) error {
	for _, value := range []string{username, mail} {
		if _, err := s.users.GetUserByUsernameOrMail(value); err == nil {
			log.Info().Msg("Root user already exists")
			return nil
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	_, err := s.users.CreateUser(CreateUserInput{
		Username: username,
		Mail:     mail,
		Password: password,
		Root:     true,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to create root user: %w", err)
	}

	log.Info().Str("username", username).Msg("Root user created")
	return nil
}

// Login verifies credentials against the username or mail and issues a signed
// session token. Missing fields, unknown users and wrong passwords all fail
// the same way on purpose.
func (s *AuthService) Login(usernameOrMail, password string) (models.User, string, error) {
	if usernameOrMail == "" || password == "" {
		return models.User{}, "", fmt.Errorf("missing credentials: %w", ErrUnauthenticated)
	}

	user, err := s.users.GetUserByUsernameOrMail(usernameOrMail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, "", fmt.Errorf("user not found: %w", ErrUnauthenticated)
		}
		return models.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, "", fmt.Errorf("wrong credentials: %w", ErrUnauthenticated)
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		return models.User{}, "", fmt.Errorf("failed to sign token: %w", err)
	}

	user.PasswordHash = ""
	return user, token, nil
}

// Register creates a new account on behalf of the acting owner. The owner's
// id is stamped on the record as an auditing back-reference.
func (s *AuthService) Register(input CreateUserInput, ownerID string) (models.User, error) {
	return s.users.CreateUser(input, &ownerID)
}

// VerifyToken reports whether a token's signature and expiry are valid. It
// never returns an error; any verification failure is just false.
func (s *AuthService) VerifyToken(token string) bool {
	_, err := auth.ValidateJWT(token)
	return err == nil
}
