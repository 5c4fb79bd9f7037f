package session

import "context"

// TokenStore is the single durable slot holding the persisted bearer token.
// Load returns serviceerr.ErrNotFound when the slot is empty; Delete on an
// empty slot is a no-op.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}
