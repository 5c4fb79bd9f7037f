// Package enhance holds the image enhancement command.
package enhance

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/styleai/styleai/internal/business"
	"github.com/styleai/styleai/internal/cmdutils"
	"github.com/styleai/styleai/internal/imaging"
	"github.com/styleai/styleai/internal/serviceerr"
)

func Cmd() *cobra.Command {
	var (
		maxWidth  int
		maxHeight int
		quality   float64
		maxSizeKB float64
	)

	cmd := &cobra.Command{
		Use:   "enhance <file>",
		Short: "Compress and enhance an image",
		Long:  "Compresses the image to the upload budget, submits it for enhancement and records the result in the local gallery.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutils.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmdutils.RunAsJob(cmd.Context(), cfg, func(ctx context.Context) error {
				return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
					opts := imaging.Options{
						MaxWidth:  maxWidth,
						MaxHeight: maxHeight,
						Quality:   quality,
						MaxSizeKB: maxSizeKB,
					}

					result, err := app.Enhance(ctx, args[0], opts)
					if err != nil {
						fmt.Fprintln(cmd.OutOrStdout(), serviceerr.UserMessage(err))
						return err
					}

					fmt.Fprintf(cmd.OutOrStdout(), "Enhanced %s -> %s (id %s)\n",
						result.OriginalFilename, result.Filename, result.ID)

					return nil
				})
			})
		},
	}

	cmd.Flags().IntVar(&maxWidth, "max-width", 0, "maximum width in pixels (default 1920)")
	cmd.Flags().IntVar(&maxHeight, "max-height", 0, "maximum height in pixels (default 1920)")
	cmd.Flags().Float64Var(&quality, "quality", 0, "initial JPEG quality in (0, 1] (default 0.75)")
	cmd.Flags().Float64Var(&maxSizeKB, "max-size-kb", 0, "target size in KB (default 500)")

	return cmd
}
