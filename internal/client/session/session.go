// Package session owns the client's identity state. The Manager is the
// single writer of both the in-memory session and the persisted
// token/user pair; consumers read snapshots and invoke the five
// identity operations.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matthewvu2719/Journey-sub002/internal/client/api"
	"github.com/matthewvu2719/Journey-sub002/internal/client/device"
	"github.com/matthewvu2719/Journey-sub002/internal/client/store"
	"github.com/matthewvu2719/Journey-sub002/internal/models"
)

// ErrOperationInFlight is returned when an identity operation starts
// while another one has not finished. The reference behavior let such
// calls race; the manager rejects them instead.
var ErrOperationInFlight = errors.New("another session operation is in flight")

// DefaultVerifyTimeout bounds the current-user check during bootstrap.
// Past the deadline the stored session is trusted as-is.
const DefaultVerifyTimeout = 3 * time.Second

// AuthAPI is the remote auth service surface the manager drives.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	SignUp(ctx context.Context, email, password, name string) (*models.AuthResult, error)
	GuestLogin(ctx context.Context, deviceID string) (*models.AuthResult, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	SetToken(token string)
}

// Store is the durable key-value storage the manager persists the
// session into.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Snapshot is a point-in-time copy of the session for consumers.
type Snapshot struct {
	User    *models.User
	Token   string
	Loading bool
	Err     string
}

// IsAuthenticated reports whether a user and token are both present.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// IsGuest reports whether the current session belongs to a guest account.
func (s Snapshot) IsGuest() bool {
	return s.IsAuthenticated() && s.User.IsGuest()
}

// Manager mediates every identity-changing operation. Token and user
// are set together and cleared together, in the store first and in
// memory second, so the pair is never observable half-written.
type Manager struct {
	api           AuthAPI
	store         Store
	log           *zap.Logger
	verifyTimeout time.Duration

	mu           sync.Mutex
	user         *models.User
	token        string
	loading      bool
	errMsg       string
	inFlight     bool
	bootstrapped bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithVerifyTimeout overrides the bootstrap verification deadline.
func WithVerifyTimeout(d time.Duration) Option {
	return func(m *Manager) { m.verifyTimeout = d }
}

// NewManager creates a session manager. The manager starts in the
// bootstrapping state (loading=true) until Bootstrap has run. A nil
// logger is replaced with a no-op one.
func NewManager(authAPI AuthAPI, kv Store, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		api:           authAPI,
		store:         kv,
		log:           log,
		verifyTimeout: DefaultVerifyTimeout,
		loading:       true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		Token:   m.token,
		Loading: m.loading,
		Err:     m.errMsg,
	}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

// IsAuthenticated reports whether a session is currently held.
func (m *Manager) IsAuthenticated() bool {
	return m.Snapshot().IsAuthenticated()
}

// IsGuest reports whether the current session is a guest session.
func (m *Manager) IsGuest() bool {
	return m.Snapshot().IsGuest()
}

// Bootstrap restores the session from the store and verifies it
// against the server. It runs at most once; later calls are no-ops.
//
// The restore happens first so consumers see the stored session
// immediately instead of flashing to logged-out. Verification is
// bounded by the verify timeout: a slow or unreachable server keeps
// the optimistic state, only an explicit 401 clears it. Bootstrap
// never returns an error; unexpected failures are recorded on the
// session and contained here.
func (m *Manager) Bootstrap(ctx context.Context) {
	m.mu.Lock()
	if m.bootstrapped || m.inFlight {
		m.mu.Unlock()
		return
	}
	m.bootstrapped = true
	m.inFlight = true
	m.loading = true
	m.errMsg = ""
	m.mu.Unlock()
	defer m.finish()

	token, okToken := m.store.Get(store.KeyToken)
	raw, okUser := m.store.Get(store.KeyUser)
	if !okToken || !okUser || token == "" {
		// Remove a stray half of the pair left by an interrupted run.
		if okToken || okUser {
			m.clearStored()
		}
		return
	}

	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		m.log.Debug("discarding unreadable stored user", zap.Error(err))
		m.clearStored()
		return
	}

	// Optimistic restore.
	m.api.SetToken(token)
	m.mu.Lock()
	m.user = &u
	m.token = token
	m.mu.Unlock()

	vctx, cancel := context.WithTimeout(ctx, m.verifyTimeout)
	defer cancel()

	fresh, err := m.api.CurrentUser(vctx)
	if err != nil {
		var apiErr *api.Error
		switch {
		case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized:
			// The token is dead on the server. Land in the anonymous
			// state silently; this is not a visible error.
			m.log.Debug("stored session rejected, clearing", zap.Error(err))
			m.clearSession()
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, api.ErrUnreachable):
			// Favor availability: keep the stored session.
			m.log.Debug("session verification skipped", zap.Error(err))
		default:
			m.mu.Lock()
			m.errMsg = DisplayMessage(err)
			m.mu.Unlock()
		}
		return
	}

	// Fresh user replaces the stored one; the token is unchanged.
	if b, err := json.Marshal(fresh); err == nil {
		if err := m.store.Set(store.KeyUser, string(b)); err != nil {
			m.log.Debug("failed to refresh stored user", zap.Error(err))
		}
	}
	m.mu.Lock()
	m.user = fresh
	m.mu.Unlock()
}

// Login exchanges credentials for a session. On failure the prior
// session is left untouched and the error is both recorded for
// display and returned.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.finish()

	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, m.fail(err)
	}
	if err := m.adopt(res); err != nil {
		return nil, m.fail(err)
	}
	u := res.User
	return &u, nil
}

// SignUp registers a new account and adopts the returned session. A
// guest converting to a registered account goes through here too: the
// new token and user simply replace the guest pair.
func (m *Manager) SignUp(ctx context.Context, email, password, name string) (*models.User, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.finish()

	res, err := m.api.SignUp(ctx, email, password, name)
	if err != nil {
		return nil, m.fail(err)
	}
	if err := m.adopt(res); err != nil {
		return nil, m.fail(err)
	}
	u := res.User
	return &u, nil
}

// GuestLogin starts a guest session. When no device id is supplied the
// durable one is used, generated on first call and never rotated by
// any later operation.
func (m *Manager) GuestLogin(ctx context.Context, deviceID ...string) (*models.User, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.finish()

	id := ""
	if len(deviceID) > 0 {
		id = deviceID[0]
	}
	if id == "" {
		var err error
		id, err = device.Resolve(m.store)
		if err != nil {
			return nil, m.fail(err)
		}
	}

	res, err := m.api.GuestLogin(ctx, id)
	if err != nil {
		return nil, m.fail(err)
	}
	if err := m.adopt(res); err != nil {
		return nil, m.fail(err)
	}
	u := res.User
	return &u, nil
}

// Logout clears the session. The remote call is best-effort: local
// sign-out succeeds even when the server is unreachable. The device id
// is preserved. Calling Logout while anonymous is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.begin(); err != nil {
		return err
	}
	defer m.finish()

	m.mu.Lock()
	hasToken := m.token != ""
	m.mu.Unlock()

	if hasToken {
		if err := m.api.Logout(ctx); err != nil {
			m.log.Debug("remote logout failed", zap.Error(err))
		}
	}
	m.clearSession()
	return nil
}

// begin claims the single operation slot and enters the loading state.
func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrOperationInFlight
	}
	m.inFlight = true
	m.loading = true
	m.errMsg = ""
	return nil
}

// finish releases the operation slot.
func (m *Manager) finish() {
	m.mu.Lock()
	m.inFlight = false
	m.loading = false
	m.mu.Unlock()
}

// fail records the display message for err and returns err unchanged
// so the caller can react as well.
func (m *Manager) fail(err error) error {
	m.mu.Lock()
	m.errMsg = DisplayMessage(err)
	m.mu.Unlock()
	return err
}

// adopt persists the token/user pair and then updates memory. Store
// writes come first; if the second write fails the first is rolled
// back to its previous value so neither the store nor memory ever
// holds a token without a user.
func (m *Manager) adopt(res *models.AuthResult) error {
	b, err := json.Marshal(res.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	prevToken, hadToken := m.store.Get(store.KeyToken)
	if err := m.store.Set(store.KeyToken, res.Token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := m.store.Set(store.KeyUser, string(b)); err != nil {
		if hadToken {
			_ = m.store.Set(store.KeyToken, prevToken)
		} else {
			_ = m.store.Delete(store.KeyToken)
		}
		return fmt.Errorf("persist user: %w", err)
	}

	m.api.SetToken(res.Token)
	m.mu.Lock()
	u := res.User
	m.user = &u
	m.token = res.Token
	m.mu.Unlock()
	return nil
}

// clearSession drops the session from the store, the API client and
// memory. The device id slot is untouched.
func (m *Manager) clearSession() {
	m.clearStored()
	m.api.SetToken("")
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.mu.Unlock()
}

// clearStored removes the persisted token/user pair.
func (m *Manager) clearStored() {
	if err := m.store.Delete(store.KeyToken); err != nil {
		m.log.Debug("failed to clear stored token", zap.Error(err))
	}
	if err := m.store.Delete(store.KeyUser); err != nil {
		m.log.Debug("failed to clear stored user", zap.Error(err))
	}
}

// DisplayMessage converts an operation error into the text surfaced to
// the user. Server-supplied details pass through verbatim; anything
// without a structured detail collapses to a generic connectivity
// message so raw transport errors are never shown.
func DisplayMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "unable to connect to the server"
}
