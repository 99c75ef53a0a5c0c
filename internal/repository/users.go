// Package repository provides persistence implementations for the auth service.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/matthewvu2719/Journey-sub002/internal/models"
)

var (
	// ErrNotFound is returned when no matching user exists.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// PostgresUserRepository implements user persistence using PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts a registered user. A unique violation on the email
// column is reported as ErrDuplicateEmail.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, u models.User, passwordHash []byte) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, email, name, password_hash, user_type, created_at, last_seen)
		 VALUES ($1, $2, $3, $4, $5, now(), now())`,
		u.ID, u.Email, u.Name, passwordHash, u.UserType,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByEmail returns the user and password hash for the given email.
// Returns ErrNotFound when no such user exists.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, []byte, error) {
	var (
		u        models.User
		mail     sql.NullString
		name     sql.NullString
		hash     []byte
		userType string
	)
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, email, name, password_hash, user_type FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &mail, &name, &hash, &userType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("select user by email: %w", err)
	}
	if mail.Valid {
		u.Email = &mail.String
	}
	if name.Valid {
		u.Name = &name.String
	}
	u.UserType = models.UserType(userType)
	return &u, hash, nil
}

// FindByID returns the user with the given id, or ErrNotFound.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var (
		u        models.User
		mail     sql.NullString
		name     sql.NullString
		userType string
	)
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, email, name, user_type FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &mail, &name, &userType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user by id: %w", err)
	}
	if mail.Valid {
		u.Email = &mail.String
	}
	if name.Valid {
		u.Name = &name.String
	}
	u.UserType = models.UserType(userType)
	return &u, nil
}

// FindOrCreateGuest returns the guest account bound to deviceID,
// creating it with newID when the device has never been seen. Repeat
// calls for the same device always return the same account.
func (r *PostgresUserRepository) FindOrCreateGuest(ctx context.Context, newID, deviceID string) (*models.User, error) {
	var id string
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (id, user_type, device_id, created_at, last_seen)
		 VALUES ($1, $2, $3, now(), now())
		 ON CONFLICT (device_id) DO UPDATE SET last_seen = now()
		 RETURNING id`,
		newID, models.Guest, deviceID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("upsert guest: %w", err)
	}
	return &models.User{ID: id, UserType: models.Guest}, nil
}
