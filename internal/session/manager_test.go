package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styleai/styleai/internal/serviceerr"
	"github.com/styleai/styleai/internal/session"
	sessionmock "github.com/styleai/styleai/internal/session/mock"
)

// stubBackend satisfies session.Backend with injectable behaviour.
type stubBackend struct {
	loginFn    func(ctx context.Context, username, password string) (session.Credentials, error)
	registerFn func(ctx context.Context, username, email, password string) (session.Credentials, error)
	currentFn  func(ctx context.Context) (*session.User, error)

	currentCalls int
}

func (b *stubBackend) Login(ctx context.Context, username, password string) (session.Credentials, error) {
	return b.loginFn(ctx, username, password)
}

func (b *stubBackend) Register(ctx context.Context, username, email, password string) (session.Credentials, error) {
	return b.registerFn(ctx, username, email, password)
}

func (b *stubBackend) CurrentUser(ctx context.Context) (*session.User, error) {
	b.currentCalls++
	return b.currentFn(ctx)
}

func testUser() *session.User {
	return &session.User{
		ID:       "7e0a1a0e-8f36-4a11-bc8b-0f8f19f7c1a2",
		Username: "ansel",
		Email:    "ansel@example.com",
		IsActive: true,
	}
}

func TestManager_Initialize(t *testing.T) {
	user := testUser()

	tests := []struct {
		name              string
		store             *sessionmock.Repository
		backend           *stubBackend
		wantAuthenticated bool
		wantTokenStored   bool
	}{
		{
			name:  "No persisted token",
			store: sessionmock.NewInMemRepository(),
			backend: &stubBackend{
				currentFn: func(context.Context) (*session.User, error) {
					t.Fatal("no verification expected without a token")
					return nil, nil
				},
			},
			wantAuthenticated: false,
			wantTokenStored:   false,
		},
		{
			name:  "Valid persisted token",
			store: sessionmock.NewInMemRepository(sessionmock.WithToken("good-token")),
			backend: &stubBackend{
				currentFn: func(context.Context) (*session.User, error) { return user, nil },
			},
			wantAuthenticated: true,
			wantTokenStored:   true,
		},
		{
			name:  "Rejected persisted token is erased",
			store: sessionmock.NewInMemRepository(sessionmock.WithToken("stale-token")),
			backend: &stubBackend{
				currentFn: func(context.Context) (*session.User, error) {
					return nil, serviceerr.ErrInvalidCredentials
				},
			},
			wantAuthenticated: false,
			wantTokenStored:   false,
		},
		{
			name:  "Store read error treated as absent",
			store: sessionmock.NewInMemRepository(sessionmock.WithLoadError(errors.New("disk on fire"))),
			backend: &stubBackend{
				currentFn: func(context.Context) (*session.User, error) {
					t.Fatal("no verification expected on read error")
					return nil, nil
				},
			},
			wantAuthenticated: false,
			wantTokenStored:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := session.NewManager(tt.backend, tt.store)
			require.True(t, m.Loading())

			snap := m.Initialize(context.Background())

			assert.False(t, m.Loading())
			assert.Equal(t, tt.wantAuthenticated, snap.Authenticated())

			_, stored := tt.store.Stored()
			assert.Equal(t, tt.wantTokenStored, stored)
		})
	}
}

func TestManager_Login(t *testing.T) {
	user := testUser()

	t.Run("Success persists token and authenticates", func(t *testing.T) {
		store := sessionmock.NewInMemRepository()
		backend := &stubBackend{
			loginFn: func(_ context.Context, username, password string) (session.Credentials, error) {
				require.Equal(t, "ansel", username)
				require.Equal(t, "hunter2", password)
				return session.Credentials{Token: "fresh-token", User: user}, nil
			},
		}
		m := session.NewManager(backend, store)

		ok := m.Login(context.Background(), "ansel", "hunter2")

		require.True(t, ok)
		assert.True(t, m.Current().Authenticated())
		assert.Equal(t, "fresh-token", m.Token())

		stored, set := store.Stored()
		assert.True(t, set)
		assert.Equal(t, "fresh-token", stored)
	})

	t.Run("Failure leaves prior session untouched", func(t *testing.T) {
		store := sessionmock.NewInMemRepository(sessionmock.WithToken("existing-token"))
		backend := &stubBackend{
			loginFn: func(context.Context, string, string) (session.Credentials, error) {
				return session.Credentials{}, serviceerr.ErrInvalidCredentials
			},
			currentFn: func(context.Context) (*session.User, error) { return user, nil },
		}
		m := session.NewManager(backend, store)
		m.Initialize(context.Background())
		before := m.Current()

		ok := m.Login(context.Background(), "ansel", "wrong")

		assert.False(t, ok)
		assert.Equal(t, before, m.Current())

		stored, set := store.Stored()
		assert.True(t, set)
		assert.Equal(t, "existing-token", stored)
	})
}

func TestManager_Register(t *testing.T) {
	user := testUser()
	store := sessionmock.NewInMemRepository()
	backend := &stubBackend{
		registerFn: func(_ context.Context, username, email, password string) (session.Credentials, error) {
			require.Equal(t, "ansel", username)
			require.Equal(t, "ansel@example.com", email)
			require.Equal(t, "hunter2", password)
			return session.Credentials{Token: "minted-token", User: user}, nil
		},
	}
	m := session.NewManager(backend, store)

	ok := m.Register(context.Background(), "ansel", "ansel@example.com", "hunter2")

	// Registration auto-logs-in.
	require.True(t, ok)
	assert.True(t, m.Current().Authenticated())
	assert.Equal(t, "minted-token", m.Token())
}

func TestManager_Logout(t *testing.T) {
	user := testUser()

	tests := []struct {
		name  string
		store *sessionmock.Repository
	}{
		{
			name:  "From authenticated state",
			store: sessionmock.NewInMemRepository(sessionmock.WithToken("t")),
		},
		{
			name:  "From unauthenticated state",
			store: sessionmock.NewInMemRepository(),
		},
		{
			name:  "Store delete error is swallowed",
			store: sessionmock.NewInMemRepository(sessionmock.WithDeleteError(errors.New("disk on fire"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &stubBackend{
				currentFn: func(context.Context) (*session.User, error) { return user, nil },
			}
			m := session.NewManager(backend, tt.store)
			m.Initialize(context.Background())

			m.Logout(context.Background())

			assert.False(t, m.Current().Authenticated())
			assert.Empty(t, m.Token())
		})
	}
}

func TestManager_RefreshUser(t *testing.T) {
	t.Run("No token is a no-op without a network call", func(t *testing.T) {
		backend := &stubBackend{
			currentFn: func(context.Context) (*session.User, error) {
				return testUser(), nil
			},
		}
		m := session.NewManager(backend, sessionmock.NewInMemRepository())
		m.Initialize(context.Background())

		m.RefreshUser(context.Background())

		assert.Zero(t, backend.currentCalls)
		assert.False(t, m.Current().Authenticated())
	})

	t.Run("Replaces the profile on success", func(t *testing.T) {
		stale := testUser()
		fresh := testUser()
		fresh.ImageCredits = 42

		calls := 0
		backend := &stubBackend{
			currentFn: func(context.Context) (*session.User, error) {
				calls++
				if calls == 1 {
					return stale, nil
				}
				return fresh, nil
			},
		}
		m := session.NewManager(backend, sessionmock.NewInMemRepository(sessionmock.WithToken("t")))
		m.Initialize(context.Background())
		require.Equal(t, 0, m.Current().User.ImageCredits)

		m.RefreshUser(context.Background())

		assert.Equal(t, 42, m.Current().User.ImageCredits)
	})

	t.Run("Keeps last known good profile on failure", func(t *testing.T) {
		user := testUser()
		calls := 0
		backend := &stubBackend{
			currentFn: func(context.Context) (*session.User, error) {
				calls++
				if calls == 1 {
					return user, nil
				}
				return nil, serviceerr.ErrNetwork
			},
		}
		m := session.NewManager(backend, sessionmock.NewInMemRepository(sessionmock.WithToken("t")))
		m.Initialize(context.Background())

		m.RefreshUser(context.Background())

		// Fails open: stale profile kept, still authenticated.
		assert.True(t, m.Current().Authenticated())
		assert.Equal(t, user, m.Current().User)
	})
}

func TestManager_Subscribe(t *testing.T) {
	user := testUser()
	backend := &stubBackend{
		loginFn: func(context.Context, string, string) (session.Credentials, error) {
			return session.Credentials{Token: "t", User: user}, nil
		},
	}
	m := session.NewManager(backend, sessionmock.NewInMemRepository())

	var seen []bool
	unsubscribe := m.Subscribe(func(s session.Session) {
		seen = append(seen, s.Authenticated())
	})

	m.Login(context.Background(), "ansel", "hunter2")
	require.NotEmpty(t, seen)
	assert.True(t, seen[len(seen)-1])

	unsubscribe()
	n := len(seen)
	m.Logout(context.Background())
	assert.Len(t, seen, n)
}

func TestSession_Derived(t *testing.T) {
	premium := testUser()
	premium.IsPremium = true

	tests := []struct {
		name     string
		session  session.Session
		wantAuth bool
		wantPrem bool
	}{
		{name: "Empty", session: session.Session{}, wantAuth: false, wantPrem: false},
		{name: "Token only", session: session.Session{Token: "t"}, wantAuth: false, wantPrem: false},
		{name: "Token and user", session: session.Session{Token: "t", User: testUser()}, wantAuth: true, wantPrem: false},
		{name: "Premium user", session: session.Session{Token: "t", User: premium}, wantAuth: true, wantPrem: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAuth, tt.session.Authenticated())
			assert.Equal(t, tt.wantPrem, tt.session.Premium())
		})
	}
}
