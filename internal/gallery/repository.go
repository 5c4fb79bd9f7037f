package gallery

import "context"

// Repository persists gallery items. Implementations must return
// serviceerr.ErrNotFound from Get and Delete when no item carries the
// given ID.
type Repository interface {
	// Upsert inserts the item or fully replaces the stored row with the
	// same ID.
	Upsert(ctx context.Context, item Item) error

	// Get returns the item with the given ID.
	Get(ctx context.Context, id string) (Item, error)

	// List returns all items, newest first.
	List(ctx context.Context) ([]Item, error)

	// Delete removes the item with the given ID.
	Delete(ctx context.Context, id string) error
}
