// Package service provides authentication business logic,
// delegating persistence to a UserRepository.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/matthewvu2719/Journey-sub002/internal/models"
	"github.com/matthewvu2719/Journey-sub002/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when the email/password pair does
	// not match a registered account.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNotFound is returned when the requested user does not exist.
	ErrNotFound = errors.New("user not found")
)

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// CreateUser inserts a registered user with its password hash.
	CreateUser(ctx context.Context, u models.User, passwordHash []byte) error
	// FindByEmail returns the user and password hash for an email.
	FindByEmail(ctx context.Context, email string) (*models.User, []byte, error)
	// FindByID returns the user with the given id.
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindOrCreateGuest returns the guest bound to deviceID, creating it
	// with newID on first sight.
	FindOrCreateGuest(ctx context.Context, newID, deviceID string) (*models.User, error)
}

// Service implements authentication operations by delegating to a
// UserRepository.
type Service struct {
	// repo performs the data-layer operations.
	repo UserRepository
}

// NewAuthService constructs a new Service using the provided repository.
func NewAuthService(repo UserRepository) *Service {
	return &Service{repo: repo}
}

// SignUp registers a new account with a bcrypt-hashed password. A guest
// converting to a registered account gets a fresh user; the guest row
// is left behind for the retention cleaner.
func (s *Service) SignUp(ctx context.Context, email, password string, name *string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		ID:       uuid.NewString(),
		Email:    &email,
		Name:     name,
		UserType: models.Authenticated,
	}
	if err := s.repo.CreateUser(ctx, u, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &u, nil
}

// Login verifies the credentials and returns the matching user. A
// missing account and a wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, hash, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GuestLogin returns the guest account for the device, creating one on
// first contact. The same device always maps to the same guest.
func (s *Service) GuestLogin(ctx context.Context, deviceID string) (*models.User, error) {
	return s.repo.FindOrCreateGuest(ctx, uuid.NewString(), deviceID)
}

// CurrentUser returns the user record for an authenticated user id.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}
