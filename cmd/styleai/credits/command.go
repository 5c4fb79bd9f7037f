// Package credits holds the credit purchase commands.
package credits

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/styleai/styleai/internal/business"
	"github.com/styleai/styleai/internal/cmdutils"
	"github.com/styleai/styleai/internal/config"
	"github.com/styleai/styleai/internal/payment"
)

func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credits",
		Short: "Buy image credits",
	}

	cmd.AddCommand(buyCmd(), intentCmd(), confirmCmd())

	return cmd
}

func buyCmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"buy",
		"Buy a credit pack through the direct endpoint",
		fmt.Sprintf("Buys %d credits through the backend's direct purchase endpoint.", payment.CreditPackCredits),
		func(ctx context.Context, cfg *config.Config, _ []string) error {
			return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
				result, err := app.Payments.PurchaseDirect(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("Purchased %d credits, %d total\n", result.CreditsPurchased, result.TotalCredits)

				return nil
			})
		},
	)
}

func intentCmd() *cobra.Command {
	return cmdutils.CobraCommand(
		"intent",
		"Open a provider payment for a credit pack",
		"Creates a payment intent and prints the provider handles. Complete the payment on the provider surface, then run confirm.",
		func(ctx context.Context, cfg *config.Config, _ []string) error {
			return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
				intent, err := app.Payments.CreateIntent(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("Payment intent: %s\n", intent.PaymentIntentID)
				fmt.Printf("Client secret:  %s\n", intent.ClientSecret)
				if cfg.StripePublishableKey != "" {
					fmt.Printf("Publishable key: %s\n", cfg.StripePublishableKey)
				}

				return nil
			})
		},
	)
}

func confirmCmd() *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"confirm <payment-intent-id>",
		"Confirm a completed provider payment",
		"Reports the provider-side success to the backend, which verifies the payment and grants the credits.",
		func(ctx context.Context, cfg *config.Config, args []string) error {
			return cmdutils.WithApp(ctx, cfg, func(ctx context.Context, app *business.App) error {
				result, err := app.Payments.Confirm(ctx, args[0])
				if err != nil {
					return err
				}

				fmt.Printf("Added %d credits, %d total\n", result.CreditsAdded, result.TotalCredits)

				return nil
			})
		},
	)
	cmd.Args = cobra.ExactArgs(1)

	return cmd
}
