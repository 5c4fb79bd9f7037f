// Package gallery holds the local gallery commands.
package gallery

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/styleai/styleai/internal/business"
	"github.com/styleai/styleai/internal/cmdutils"
	"github.com/styleai/styleai/internal/config"
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Manage the local gallery",
	}

	cmd.AddCommand(listCmd(), syncCmd(), downloadCmd(), removeCmd())

	return cmd
}

func listCmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"list",
		"List gallery items, newest first",
		"Lists the locally known results. Run sync first to pull the backend listing.",
		func(ctx context.Context, cfg *config.Config, _ []string) error {
			return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
				items, err := app.Gallery.Items(ctx)
				if err != nil {
					return err
				}

				if len(items) == 0 {
					fmt.Println("Gallery is empty")
					return nil
				}

				for _, item := range items {
					taken := "unknown"
					if !item.TakenAt.IsZero() {
						taken = item.TakenAt.Format(time.RFC3339)
					}

					downloaded := ""
					if item.LocalPath != "" {
						downloaded = "  " + item.LocalPath
					}

					fmt.Printf("%s  %s  %s  %s%s\n", item.ID, taken, item.Style, item.Filename, downloaded)
				}

				return nil
			})
		},
	)
}

func syncCmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"sync",
		"Pull the backend listing into the local gallery",
		"Merges the backend image listing into the local store. Downloaded paths are kept.",
		func(ctx context.Context, cfg *config.Config, _ []string) error {
			return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
				count, err := app.Gallery.Sync(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("Synced %d items\n", count)

				return nil
			})
		},
	)
}

func downloadCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"download <id>",
		"Download an image to the gallery directory",
		"Fetches the processed image bytes and stores them locally.",
		func(ctx context.Context, cfg *config.Config, args []string) error {
			return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
				path, err := app.Gallery.Download(ctx, args[0])
				if err != nil {
					return err
				}

				fmt.Println(path)

				return nil
			})
		},
	)
	cmd.Args = cobra.ExactArgs(1)

	return cmd
}

func removeCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"remove <id>",
		"Remove an item from the local gallery",
		"Removes the local record and its downloaded file. The backend copy is untouched.",
		func(ctx context.Context, cfg *config.Config, args []string) error {
			return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
				if err := app.Gallery.Remove(ctx, args[0]); err != nil {
					return err
				}

				fmt.Println("Removed")

				return nil
			})
		},
	)
	cmd.Args = cobra.ExactArgs(1)

	return cmd
}
