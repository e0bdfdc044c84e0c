package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/gophcms/internal/models"
)

// AuthRepository defines the credential lookups required by the
// authentication service.
type AuthRepository interface {
	// GetUser returns the stored user; the boolean is false if the user is unknown.
	// ctx carries deadlines, cancellation signals, and other request-scoped values.
	GetUser(ctx context.Context, username string) (models.User, bool, error)
	// SaveUser adds a user or replaces its password hash.
	SaveUser(ctx context.Context, user models.User) error
}

// AuthService verifies credentials by delegating lookups to an AuthRepository.
type AuthService struct {
	// repo performs the data-layer operations.
	repo AuthRepository
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo AuthRepository) *AuthService {
	return &AuthService{repo: repo}
}

// Verify reports whether password matches the stored hash for username.
// Unknown users and mismatched passwords both yield false with a nil error.
func (s *AuthService) Verify(ctx context.Context, username, password string) (bool, error) {
	user, ok, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify %q: %w", username, err)
	}
}

// SetPassword hashes password with bcrypt and stores it for username.
func (s *AuthService) SetPassword(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.SaveUser(ctx, models.User{Username: username, PasswordHash: hash})
}
