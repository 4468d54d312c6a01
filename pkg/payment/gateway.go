// Package payment wraps the external payment provider behind the small
// collaborator interface the coordinators depend on.
package payment

// Charge is the provider's answer to a charge attempt.
type Charge struct {
	ID         string
	ReceiptURL string
	Paid       bool
}

// Refund is the provider's answer to a refund request.
type Refund struct {
	ID string
}

// Gateway charges and refunds through the external payment provider. Both
// calls must be safely retriable: Charge given the same idempotency key and
// Refund given the same charge reference have at most one effect.
type Gateway interface {
	Charge(amountMinorUnits int64, currency, token, idempotencyKey string, metadata map[string]string) (*Charge, error)
	Refund(chargeID string, metadata map[string]string) (*Refund, error)
}
