// Package usage holds the usage and connectivity commands.
package usage

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/styleai/styleai/internal/business"
	"github.com/styleai/styleai/internal/cmdutils"
	"github.com/styleai/styleai/internal/serviceerr"
)

func Cmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show the current usage and credit standing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdutils.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmdutils.RunAsJob(cmd.Context(), cfg, func(ctx context.Context) error {
				return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
					if check {
						if err := app.Client.Health(ctx); err != nil {
							fmt.Fprintln(cmd.OutOrStdout(), serviceerr.UserMessage(err))
							return err
						}

						fmt.Fprintln(cmd.OutOrStdout(), "Backend reachable")

						return nil
					}

					info, err := app.Usage.Info(ctx)
					if err != nil {
						fmt.Fprintln(cmd.OutOrStdout(), serviceerr.UserMessage(err))
						return err
					}

					fmt.Fprintf(cmd.OutOrStdout(), "Tier:      %s\n", info.TierName)
					fmt.Fprintf(cmd.OutOrStdout(), "Used:      %d of %d\n", info.ImagesUsed, info.Limit)
					fmt.Fprintf(cmd.OutOrStdout(), "Remaining: %d\n", info.Remaining)
					fmt.Fprintf(cmd.OutOrStdout(), "Credits:   %d\n", info.ImageCredits)

					return nil
				})
			})
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "probe backend connectivity instead of fetching usage")

	return cmd
}
