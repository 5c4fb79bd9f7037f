// Package payment drives the credit purchase flows. The provider-backed
// flow creates a payment intent and confirms it once the provider reports
// success; the direct flow uses the backend's simulated purchase endpoint
// for environments without a provider.
package payment

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/styleai/styleai/internal/apiclient"
)

// The backend sells a single credit pack.
const (
	CreditPackCredits     = 10
	CreditPackAmountCents = 999
	Currency              = "usd"

	packDescription = "Style AI image credits"
)

// Source is the slice of the backend API the payment service needs.
type Source interface {
	CreatePaymentIntent(ctx context.Context, amountCents int, currency, description string) (apiclient.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, paymentIntentID string, amountCents int) (apiclient.PurchaseResult, error)
	PurchaseCredits(ctx context.Context) (apiclient.PurchaseResult, error)
}

type Service struct {
	source Source

	// purchased runs after any successful purchase so stale usage
	// accounting gets dropped.
	purchased func()
}

func NewService(source Source, purchased func()) *Service {
	if purchased == nil {
		purchased = func() {}
	}

	return &Service{source: source, purchased: purchased}
}

// CreateIntent opens a provider payment for one credit pack. The returned
// client secret is handed to the provider's own collection surface; it is
// never sent back to the backend.
func (s *Service) CreateIntent(ctx context.Context) (apiclient.PaymentIntent, error) {
	intent, err := s.source.CreatePaymentIntent(ctx, CreditPackAmountCents, Currency, packDescription)
	if err != nil {
		return apiclient.PaymentIntent{}, fmt.Errorf("creating payment intent: %w", err)
	}

	slogctx.Info(ctx, "Created payment intent", "payment_intent_id", intent.PaymentIntentID)

	return intent, nil
}

// Confirm reports a provider-side success to the backend, which verifies
// the intent and grants the credits.
func (s *Service) Confirm(ctx context.Context, paymentIntentID string) (apiclient.PurchaseResult, error) {
	result, err := s.source.ConfirmPayment(ctx, paymentIntentID, CreditPackAmountCents)
	if err != nil {
		return apiclient.PurchaseResult{}, fmt.Errorf("confirming payment: %w", err)
	}

	s.purchased()

	slogctx.Info(ctx, "Payment confirmed", "credits_added", result.CreditsAdded, "total_credits", result.TotalCredits)

	return result, nil
}

// PurchaseDirect buys a credit pack through the simulated endpoint.
func (s *Service) PurchaseDirect(ctx context.Context) (apiclient.PurchaseResult, error) {
	result, err := s.source.PurchaseCredits(ctx)
	if err != nil {
		return apiclient.PurchaseResult{}, fmt.Errorf("purchasing credits: %w", err)
	}

	s.purchased()

	slogctx.Info(ctx, "Credits purchased", "credits_purchased", result.CreditsPurchased, "total_credits", result.TotalCredits)

	return result, nil
}
