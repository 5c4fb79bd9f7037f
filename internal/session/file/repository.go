// Package sessionfile persists the bearer token as a single 0600 file under
// the application data directory.
package sessionfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/styleai/styleai/internal/serviceerr"
	"github.com/styleai/styleai/internal/session"
)

type Repository struct {
	path string
}

var _ = session.TokenStore(&Repository{})

func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

func (r *Repository) Load(_ context.Context) (string, error) {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", serviceerr.ErrNotFound
		}

		return "", fmt.Errorf("reading token file: %w", err)
	}

	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", serviceerr.ErrNotFound
	}

	return token, nil
}

func (r *Repository) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Write-then-rename so a crash never leaves a truncated slot behind.
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}

	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replacing token file: %w", err)
	}

	return nil
}

func (r *Repository) Delete(_ context.Context) error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}

	return nil
}
