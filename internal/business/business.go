// Package business wires the client components together. Commands construct
// an App once and call into its services; nothing below this package knows
// about cobra or process lifetime.
package business

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	slogctx "github.com/veqryn/slog-context"

	"github.com/styleai/styleai/internal/apiclient"
	"github.com/styleai/styleai/internal/config"
	"github.com/styleai/styleai/internal/gallery"
	gallerysql "github.com/styleai/styleai/internal/gallery/sql"
	"github.com/styleai/styleai/internal/payment"
	"github.com/styleai/styleai/internal/session"
	sessionfile "github.com/styleai/styleai/internal/session/file"
	"github.com/styleai/styleai/internal/usage"
)

// App holds the wired client services.
type App struct {
	Config   *config.Config
	Client   *apiclient.Client
	Sessions *session.Manager
	Gallery  *gallery.Service
	Usage    *usage.Service
	Payments *payment.Service

	db *sql.DB
}

// NewApp builds the full service graph from the configuration and restores
// the persisted session. The returned close function releases the local
// database.
func NewApp(ctx context.Context, cfg *config.Config) (_ *App, closeFn func(), _ error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	// The manager supplies tokens to the client, and the client serves as
	// the manager's backend. The token source reads through the pointer so
	// the client can be built first.
	var sessions *session.Manager

	client, err := apiclient.New(apiclient.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.APITimeout,
		UserAgent: cfg.AppName + "/" + cfg.AppVersion,
		TokenSource: func() string {
			if sessions == nil {
				return ""
			}

			return sessions.Token()
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating API client: %w", err)
	}

	sessions = session.NewManager(client, sessionfile.NewRepository(cfg.TokenPath()))
	restored := sessions.Initialize(ctx)
	slogctx.Debug(ctx, "Restored session", "authenticated", restored.Authenticated())

	db, err := gallerysql.Open(ctx, cfg.GalleryDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening gallery database: %w", err)
	}

	usageSvc := usage.NewService(client, usage.DefaultTTL)

	app := &App{
		Config:   cfg,
		Client:   client,
		Sessions: sessions,
		Gallery:  gallery.NewService(client, gallerysql.NewRepository(db), cfg.GalleryDir()),
		Usage:    usageSvc,
		Payments: payment.NewService(client, usageSvc.Invalidate),
		db:       db,
	}

	return app, func() { _ = db.Close() }, nil
}
