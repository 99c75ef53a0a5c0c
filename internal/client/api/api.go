// Package api implements the HTTP client for the auth service. It
// wraps the five remote operations the session manager depends on and
// classifies failures into structured rejections and transport errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/matthewvu2719/Journey-sub002/internal/models"
)

// ErrUnreachable is returned when no response arrived from the server
// at all. Raw transport errors are wrapped so they never leak into
// user-facing messages.
var ErrUnreachable = errors.New("auth service unreachable")

// Error is a structured rejection from the auth service. Detail
// carries the server-supplied message, suitable for display verbatim.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("auth service: status %d", e.Status)
	}
	return fmt.Sprintf("auth service: %s (status %d)", e.Detail, e.Status)
}

// Client talks to the auth service over HTTP+JSON. The bearer token is
// attached to every request once set.
type Client struct {
	http    *http.Client
	baseURL string

	mu    sync.RWMutex
	token string
}

// New creates a client for the auth service at baseURL. The timeout
// bounds each individual request; per-call contexts may shorten it
// further.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// SetToken replaces the bearer token attached to subsequent requests.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login exchanges credentials for a token and user record.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{User: resp.User(), Token: resp.Token}, nil
}

// SignUp registers a new account. name may be empty, in which case it
// is omitted from the request.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*models.AuthResult, error) {
	req := models.SignupRequest{Email: email, Password: password}
	if name != "" {
		req.Name = &name
	}
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return &models.AuthResult{User: resp.User(), Token: resp.Token}, nil
}

// GuestLogin requests a guest session for the given device id.
func (c *Client) GuestLogin(ctx context.Context, deviceID string) (*models.AuthResult, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/guest", models.GuestLoginRequest{
		DeviceID: deviceID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{User: resp.User(), Token: resp.Token}, nil
}

// Logout notifies the server that the current token is abandoned.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// CurrentUser fetches the user record for the ambient token. A 401
// rejection means the token is no longer valid.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	u := resp.User()
	return &u, nil
}

// do performs one JSON round-trip. A response with status >= 400 is
// returned as *Error; a failure to get any response is wrapped in
// ErrUnreachable.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Surface context errors as-is so the caller can tell a
		// deadline apart from a connection failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var er models.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		return &Error{Status: resp.StatusCode, Detail: er.Detail}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
