// Package migrate holds the gallery database migration command.
package migrate

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/styleai/styleai/internal/business"
	"github.com/styleai/styleai/internal/cmdutils"
	"github.com/styleai/styleai/internal/config"
)

func Cmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"migrate",
		"Apply gallery database migrations",
		"Applies pending schema migrations to the local gallery database.",
		func(ctx context.Context, cfg *config.Config, _ []string) error {
			return business.MigrateMain(ctx, cfg)
		},
	)
}
