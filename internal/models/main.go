// Package models defines the core data structures shared by the
// habit-tracker client and the auth service.
package models

// UserType identifies how an account was created.
type UserType string

const (
	// Guest represents an account tied to a device id rather than credentials.
	Guest UserType = "guest"
	// Authenticated represents a registered account with email credentials.
	Authenticated UserType = "authenticated"
)

// User represents an application user as seen by the client.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"user_id"`
	// Email is the registered email address; nil for guest accounts.
	Email *string `json:"email"`
	// Name is the display name chosen at signup; nil when not provided.
	Name *string `json:"name"`
	// UserType distinguishes guest and registered accounts.
	UserType UserType `json:"user_type"`
}

// IsGuest reports whether the user is a guest account.
func (u User) IsGuest() bool {
	return u.UserType == Guest
}

// AuthResult pairs a user record with the bearer token issued for it.
// Token and user always travel together; the session manager never
// stores one without the other.
type AuthResult struct {
	User  User
	Token string
}

// LoginRequest is the JSON payload for credential login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the JSON payload for registration. Name is optional
// and omitted when empty.
type SignupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
}

// GuestLoginRequest is the JSON payload for device-based guest login.
type GuestLoginRequest struct {
	DeviceID string `json:"device_id"`
}

// AuthResponse is the JSON body returned by login, signup and guest
// login. The same shape minus Token is returned by the current-user
// endpoint.
type AuthResponse struct {
	UserID   string   `json:"user_id"`
	Email    *string  `json:"email"`
	Name     *string  `json:"name"`
	UserType UserType `json:"user_type"`
	Token    string   `json:"token,omitempty"`
}

// User converts the wire shape into a User record.
func (r AuthResponse) User() User {
	return User{
		ID:       r.UserID,
		Email:    r.Email,
		Name:     r.Name,
		UserType: r.UserType,
	}
}

// ErrorResponse is the JSON error body used by the auth service.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
