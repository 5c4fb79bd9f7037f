// Package session owns the authenticated session of the client: the bearer
// token, the current user profile, and their persistence across restarts.
package session

import (
	"context"
	"errors"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/styleai/styleai/internal/serviceerr"
)

// Credentials is what the backend hands out on a successful login or
// registration.
type Credentials struct {
	Token string
	User  *User
}

// Backend is the slice of the REST API the session manager needs. The
// implementation attaches the bearer token to CurrentUser calls through the
// token source it was constructed with.
type Backend interface {
	Login(ctx context.Context, username, password string) (Credentials, error)
	Register(ctx context.Context, username, email, password string) (Credentials, error)
	CurrentUser(ctx context.Context) (*User, error)
}

// Manager is the single source of truth for who is logged in and which
// bearer token outgoing requests carry. All consumers hold a reference to
// the one instance constructed at startup.
//
// Field access is guarded by a mutex, but overlapping operations (say a
// RefreshUser racing a Logout) are not serialized against each other: the
// last write wins. Operations fail closed except RefreshUser, which keeps
// the last known good profile on failure.
type Manager struct {
	backend Backend
	store   TokenStore

	mu      sync.RWMutex
	token   string
	user    *User
	loading bool

	subMu   sync.Mutex
	subs    map[int]func(Session)
	nextSub int
}

func NewManager(backend Backend, store TokenStore) *Manager {
	return &Manager{
		backend: backend,
		store:   store,
		loading: true,
		subs:    make(map[int]func(Session)),
	}
}

// Initialize hydrates the session from the persisted token slot and verifies
// the token against the backend. A missing slot leaves the manager
// unauthenticated; a failed verification additionally erases the slot. No
// retry is made: one failure de-authenticates. Returns the resulting
// snapshot.
func (m *Manager) Initialize(ctx context.Context) Session {
	defer m.finishLoading()

	token, err := m.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, serviceerr.ErrNotFound) {
			slogctx.Warn(ctx, "Reading the persisted token failed", "error", err)
		}

		return m.Current()
	}

	// Adopt the candidate token so the verification request carries it.
	m.setSession(token, nil)

	user, err := m.backend.CurrentUser(ctx)
	if err != nil {
		slogctx.Info(ctx, "Persisted token rejected, clearing session", "error", err)

		if err := m.store.Delete(ctx); err != nil {
			slogctx.Warn(ctx, "Removing the persisted token failed", "error", err)
		}
		m.setSession("", nil)

		return m.Current()
	}

	m.setSession(token, user)

	return m.Current()
}

// Login authenticates with the backend and, on success, adopts and persists
// the returned session. On any failure it reports false and leaves the prior
// session untouched.
func (m *Manager) Login(ctx context.Context, username, password string) bool {
	creds, err := m.backend.Login(ctx, username, password)
	if err != nil {
		slogctx.Info(ctx, "Login failed", "username", username, "error", err)
		return false
	}

	m.adopt(ctx, creds)

	return true
}

// Register creates an account and immediately establishes a session with the
// returned credentials. Same failure contract as Login.
func (m *Manager) Register(ctx context.Context, username, email, password string) bool {
	creds, err := m.backend.Register(ctx, username, email, password)
	if err != nil {
		slogctx.Info(ctx, "Registration failed", "username", username, "error", err)
		return false
	}

	m.adopt(ctx, creds)

	return true
}

// Logout clears the in-memory session and removes the persisted token slot.
// It performs no network call and never fails the caller.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Delete(ctx); err != nil {
		slogctx.Warn(ctx, "Removing the persisted token failed", "error", err)
	}

	m.setSession("", nil)
}

// RefreshUser re-fetches the profile for the current token. With no token
// present it is a no-op. Failures keep the last known good profile; this is
// a background refresh, not a gate.
func (m *Manager) RefreshUser(ctx context.Context) {
	if m.Token() == "" {
		return
	}

	user, err := m.backend.CurrentUser(ctx)
	if err != nil {
		slogctx.Warn(ctx, "Refreshing the user profile failed", "error", err)
		return
	}

	m.mu.Lock()
	if m.token == "" {
		// A logout won the race; do not resurrect the profile.
		m.mu.Unlock()
		return
	}
	m.user = user
	m.mu.Unlock()

	m.notify()
}

// Current returns a snapshot of the session state.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Session{Token: m.token, User: m.user}
}

// Loading reports whether the initial verification is still in flight.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.loading
}

// Token returns the bearer token to attach to outgoing requests, or the
// empty string. It is the live token source handed to the API client.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.token
}

// Subscribe registers fn to be called with the new snapshot after every
// state transition. The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Session)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) adopt(ctx context.Context, creds Credentials) {
	if err := m.store.Save(ctx, creds.Token); err != nil {
		slogctx.Warn(ctx, "Persisting the token failed", "error", err)
	}

	m.setSession(creds.Token, creds.User)
}

// setSession mutates token and user atomically and notifies subscribers.
func (m *Manager) setSession(token string, user *User) {
	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()

	m.notify()
}

func (m *Manager) finishLoading() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()

	m.notify()
}

func (m *Manager) notify() {
	snapshot := m.Current()

	m.subMu.Lock()
	fns := make([]func(Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
