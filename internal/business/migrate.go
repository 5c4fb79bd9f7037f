package business

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/samber/oops"

	"github.com/styleai/styleai/internal/config"
	gallerysql "github.com/styleai/styleai/internal/gallery/sql"
)

// MigrateMain applies pending gallery database migrations and exits. NewApp
// migrates on open as well; this entrypoint exists for repairing a database
// without touching the session state.
func MigrateMain(ctx context.Context, cfg *config.Config) error {
	db, err := sql.Open("sqlite", cfg.GalleryDBPath())
	if err != nil {
		return oops.In("main").Wrapf(err, "opening DB connection")
	}
	defer db.Close()

	if err := gallerysql.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrating gallery database: %w", err)
	}

	return nil
}
