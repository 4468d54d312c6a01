package payment

import (
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/charge"
	"github.com/stripe/stripe-go/v81/refund"
)

// StripeGateway is the Stripe implementation of Gateway, using the card
// charges API with caller-supplied idempotency keys.
type StripeGateway struct{}

// NewStripeGateway configures the Stripe client with the secret key and
// returns a gateway.
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

// Charge creates a charge for the tokenized card. The idempotency key makes
// a retried call a no-op on Stripe's side, and the metadata ties the charge
// to the order it settles.
func (g *StripeGateway) Charge(amountMinorUnits int64, currency, token, idempotencyKey string, metadata map[string]string) (*Charge, error) {
	params := &stripe.ChargeParams{
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(currency),
		Source:   &stripe.PaymentSourceSourceParams{Token: stripe.String(token)},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.SetIdempotencyKey(idempotencyKey)

	ch, err := charge.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe charge failed: %w", err)
	}
	return &Charge{
		ID:         ch.ID,
		ReceiptURL: ch.ReceiptURL,
		Paid:       ch.Paid,
	}, nil
}

// Refund refunds a charge by its reference. Stripe deduplicates refunds per
// charge, so retries are safe.
func (g *StripeGateway) Refund(chargeID string, metadata map[string]string) (*Refund, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(chargeID),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	rf, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe refund failed: %w", err)
	}
	return &Refund{ID: rf.ID}, nil
}
