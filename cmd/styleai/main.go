package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/styleai/styleai/cmd/styleai/auth"
	"github.com/styleai/styleai/cmd/styleai/credits"
	"github.com/styleai/styleai/cmd/styleai/enhance"
	"github.com/styleai/styleai/cmd/styleai/gallery"
	"github.com/styleai/styleai/cmd/styleai/migrate"
	"github.com/styleai/styleai/cmd/styleai/usage"
)

// Version will be set by the build system
var Version = "0.0.1"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Style AI client version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "styleai",
		Short: "Style AI client",
		Long:  "Style AI command line client: log in, enhance images and manage the local gallery.",
	}

	cmd.AddCommand(
		versionCmd,
		auth.Cmd(),
		enhance.Cmd(),
		gallery.Cmd(),
		usage.Cmd(),
		credits.Cmd(),
		migrate.Cmd(),
	)

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Error(ctx, "failed to run the command", "error", err)

		return err
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
