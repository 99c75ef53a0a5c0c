// Package token issues and validates the bearer tokens used by the
// auth service.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/matthewvu2719/Journey-sub002/internal/models"
)

var (
	// ErrExpired is returned when a token's expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is returned for malformed or mis-signed tokens.
	ErrInvalid = errors.New("invalid token")
)

// Claims carries the user identity inside the JWT.
type Claims struct {
	// UserType mirrors the account type so handlers can tell guests apart
	// without a database lookup.
	UserType models.UserType `json:"typ"`
	jwt.RegisteredClaims
}

// Manager signs and parses tokens with a shared HS256 secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// New creates a token manager. ttl bounds how long issued tokens stay
// valid.
func New(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for the given user.
func (m *Manager) Issue(userID string, userType models.UserType) (string, error) {
	now := time.Now()
	claims := Claims{
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the token string and returns its claims. Expired
// tokens map to ErrExpired, everything else invalid to ErrInvalid.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !t.Valid || claims.Subject == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}
