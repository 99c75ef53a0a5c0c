// Package http provides HTTP handlers for the auth API: registration,
// credential login, guest login, logout and the current-user lookup.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matthewvu2719/Journey-sub002/internal/middleware"
	"github.com/matthewvu2719/Journey-sub002/internal/models"
	"github.com/matthewvu2719/Journey-sub002/internal/service"
)

// AuthService defines the interface for authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// SignUp registers a new account.
	SignUp(ctx context.Context, email, password string, name *string) (*models.User, error)
	// Login verifies credentials and returns the matching user.
	Login(ctx context.Context, email, password string) (*models.User, error)
	// GuestLogin returns the guest account bound to a device id.
	GuestLogin(ctx context.Context, deviceID string) (*models.User, error)
	// CurrentUser returns the user for an authenticated id.
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string, userType models.UserType) (string, error)
}

// AuthHandler handles HTTP requests for the auth API.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
	// Tokens issues bearer tokens on successful authentication.
	Tokens TokenIssuer
}

// Login handles credential login requests. It expects a JSON body with
// non-empty "email" and "password" fields and responds with the user
// record and a fresh bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondWithToken(w, u)
}

// SignUp handles registration requests. "name" is optional. A guest
// converting to a registered account calls this like anyone else; the
// response carries a brand-new token that replaces the guest one.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.AuthService.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondWithToken(w, u)
}

// GuestLogin handles device-based guest login requests. The same
// device id always resolves to the same guest account.
func (h *AuthHandler) GuestLogin(w http.ResponseWriter, r *http.Request) {
	var req models.GuestLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DeviceID == "" {
		writeError(w, http.StatusBadRequest, "device_id is required")
		return
	}

	u, err := h.AuthService.GuestLogin(r.Context(), req.DeviceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.respondWithToken(w, u)
}

// Logout acknowledges a sign-out. Tokens are self-expiring, so there
// is no server state to drop; clients discard the token locally.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Me returns the user record for the bearer token on the request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	u, err := h.AuthService.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// The token points at an account that no longer exists.
			writeError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, models.AuthResponse{
		UserID:   u.ID,
		Email:    u.Email,
		Name:     u.Name,
		UserType: u.UserType,
	})
}

// respondWithToken issues a token for u and writes the auth response.
func (h *AuthHandler) respondWithToken(w http.ResponseWriter, u *models.User) {
	signed, err := h.Tokens.Issue(u.ID, u.UserType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, models.AuthResponse{
		UserID:   u.ID,
		Email:    u.Email,
		Name:     u.Name,
		UserType: u.UserType,
		Token:    signed,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, models.ErrorResponse{Detail: detail})
}
