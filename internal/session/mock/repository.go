// Package sessionmock provides an in-memory token store for tests, with
// error injection per operation.
package sessionmock

import (
	"context"
	"sync"

	"github.com/styleai/styleai/internal/serviceerr"
	"github.com/styleai/styleai/internal/session"
)

type RepositoryOption func(*Repository)

type Repository struct {
	mu    sync.Mutex
	token string
	set   bool

	loadErr, saveErr, deleteErr error
}

func WithToken(token string) RepositoryOption {
	return func(r *Repository) {
		r.token = token
		r.set = true
	}
}

func WithLoadError(err error) RepositoryOption {
	return func(r *Repository) { r.loadErr = err }
}

func WithSaveError(err error) RepositoryOption {
	return func(r *Repository) { r.saveErr = err }
}

func WithDeleteError(err error) RepositoryOption {
	return func(r *Repository) { r.deleteErr = err }
}

var _ = session.TokenStore(&Repository{})

func NewInMemRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

func (r *Repository) Load(_ context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadErr != nil {
		return "", r.loadErr
	}
	if !r.set {
		return "", serviceerr.ErrNotFound
	}

	return r.token, nil
}

func (r *Repository) Save(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}
	r.token = token
	r.set = true

	return nil
}

func (r *Repository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.token = ""
	r.set = false

	return nil
}

// Stored reports the current slot contents for assertions.
func (r *Repository) Stored() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.token, r.set
}
