// Package cmdutils carries the scaffolding shared by every CLI command:
// configuration loading, logger installation and the run wrapper that turns
// failures into annotated errors.
package cmdutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/styleai/styleai/internal/business"
	"github.com/styleai/styleai/internal/config"
)

// WithApp wires the application, runs fn and releases the resources.
func WithApp(ctx context.Context, cfg *config.Config, fn func(context.Context, *business.App) error) error {
	app, closeFn, err := business.NewApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("wiring the application: %w", err)
	}
	defer closeFn()

	return fn(ctx, app)
}

// CobraCommand builds a command whose RunE loads the configuration,
// installs the logger and executes fn with the leftover arguments.
func CobraCommand(use, short, long string, fn func(context.Context, *config.Config, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return RunAsJob(cmd.Context(), cfg, func(ctx context.Context) error {
				return fn(ctx, cfg, args)
			})
		},
	}
}

// RunAsJob installs the logger and runs fn once to completion. Every
// invocation gets its own ID so log lines from one run correlate.
func RunAsJob(ctx context.Context, cfg *config.Config, fn func(context.Context) error) error {
	err := initLogger(cfg)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	ctx = slogctx.With(ctx, "invocation_id", uuid.NewString())
	slogctx.Debug(ctx, "Starting the application", slog.String("apiURL", cfg.APIURL))

	err = fn(ctx)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to run the command")
	}

	return nil
}

// LoadConfig builds the configuration snapshot, merging the optional YAML
// file under the user config directory beneath the environment.
func LoadConfig() (*config.Config, error) {
	yamlPath := ""
	if dir, err := os.UserConfigDir(); err == nil {
		yamlPath = filepath.Join(dir, "styleai", "config.yaml")
	}

	cfg, err := config.Load(yamlPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return cfg, nil
}

// initLogger installs the default slog handler. Logs go to stderr only when
// console logs are enabled; the command output itself goes to stdout and is
// never routed through the logger.
func initLogger(cfg *config.Config) error {
	var w io.Writer = io.Discard
	if cfg.EnableConsoleLogs {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if cfg.DebugMode {
		level = slog.LevelDebug
	}

	handler := slogctx.NewHandler(
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
		nil,
	)
	slog.SetDefault(slog.New(handler))

	return nil
}
