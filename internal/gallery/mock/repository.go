// Package gallerymock provides an in-memory gallery repository for tests.
package gallerymock

import (
	"context"
	"sort"
	"sync"

	"github.com/styleai/styleai/internal/gallery"
	"github.com/styleai/styleai/internal/serviceerr"
)

type Repository struct {
	mu    sync.Mutex
	items map[string]gallery.Item

	upsertErr error
	getErr    error
	listErr   error
	deleteErr error
}

type RepositoryOption func(*Repository)

// WithItems seeds the repository.
func WithItems(items ...gallery.Item) RepositoryOption {
	return func(r *Repository) {
		for _, item := range items {
			r.items[item.ID] = item
		}
	}
}

// WithUpsertError makes every Upsert call fail with err.
func WithUpsertError(err error) RepositoryOption {
	return func(r *Repository) { r.upsertErr = err }
}

// WithGetError makes every Get call fail with err.
func WithGetError(err error) RepositoryOption {
	return func(r *Repository) { r.getErr = err }
}

// WithListError makes every List call fail with err.
func WithListError(err error) RepositoryOption {
	return func(r *Repository) { r.listErr = err }
}

// WithDeleteError makes every Delete call fail with err.
func WithDeleteError(err error) RepositoryOption {
	return func(r *Repository) { r.deleteErr = err }
}

func NewInMemRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{
		items: make(map[string]gallery.Item),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Repository) Upsert(_ context.Context, item gallery.Item) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item

	return nil
}

func (r *Repository) Get(_ context.Context, id string) (gallery.Item, error) {
	if r.getErr != nil {
		return gallery.Item{}, r.getErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return gallery.Item{}, serviceerr.ErrNotFound
	}

	return item, nil
}

func (r *Repository) List(_ context.Context) ([]gallery.Item, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]gallery.Item, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].TakenAt.Equal(items[j].TakenAt) {
			return items[i].TakenAt.After(items[j].TakenAt)
		}

		return items[i].ID < items[j].ID
	})

	return items, nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return serviceerr.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
