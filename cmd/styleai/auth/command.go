// Package auth holds the login, register, logout and whoami commands.
package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/styleai/styleai/internal/business"
	"github.com/styleai/styleai/internal/cmdutils"
	"github.com/styleai/styleai/internal/config"
	"github.com/styleai/styleai/internal/serviceerr"
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the login session",
	}

	cmd.AddCommand(loginCmd(), registerCmd(), logoutCmd(), whoamiCmd())

	return cmd
}

func loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and persist the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutils.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmdutils.RunAsJob(cmd.Context(), cfg, func(ctx context.Context) error {
				pw, err := resolvePassword(password, cmd.InOrStdin())
				if err != nil {
					return err
				}

				return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
					if !app.Sessions.Login(ctx, args[0], pw) {
						fmt.Fprintln(cmd.OutOrStdout(), serviceerr.UserMessage(serviceerr.ErrInvalidCredentials))
						return errors.New("login failed")
					}

					fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", args[0])

					return nil
				})
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")

	return cmd
}

func registerCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutils.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			return cmdutils.RunAsJob(cmd.Context(), cfg, func(ctx context.Context) error {
				pw, err := resolvePassword(password, cmd.InOrStdin())
				if err != nil {
					return err
				}

				return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
					if !app.Sessions.Register(ctx, args[0], args[1], pw) {
						return errors.New("registration failed")
					}

					fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", args[0])

					return nil
				})
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"logout",
		"Log out and clear the persisted session",
		"Clears the in-memory session and removes the persisted token.",
		func(ctx context.Context, cfg *config.Config, _ []string) error {
			return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
				app.Sessions.Logout(ctx)

				fmt.Println("Logged out")

				return nil
			})
		},
	)
}

func whoamiCmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"whoami",
		"Show the current session user",
		"Prints the user restored from the persisted session, if any.",
		func(ctx context.Context, cfg *config.Config, _ []string) error {
			return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
				current := app.Sessions.Current()
				if !current.Authenticated() {
					fmt.Println("Not logged in")
					return nil
				}

				tier := "free"
				if current.Premium() {
					tier = "premium"
				}

				fmt.Printf("%s <%s> (%s, %d credits)\n",
					current.User.Username, current.User.Email, tier, current.User.ImageCredits)

				return nil
			})
		},
	)
}

func resolvePassword(flagValue string, stdin io.Reader) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	pw := strings.TrimSpace(line)
	if pw == "" {
		return "", errors.New("password must not be empty")
	}

	return pw, nil
}
