package adapter

import "context"

// ChargeCreated is the tagged success result of creating a charge: the
// provider-assigned payment id plus the PIX copy-and-paste code the user
// needs to pay it.
type ChargeCreated struct {
	PaymentID int64
	PixCode   string
}

// PaymentGateway is the hex port for the PIX payment provider.
type PaymentGateway interface {
	Name() string

	// CreateCharge creates a PIX charge for the given amount (centavos).
	// A failure or a response missing the payment id or PIX code returns an
	// error; no partial result is ever returned.
	CreateCharge(ctx context.Context, amountCents int64, description string) (ChargeCreated, error)

	// ChargeStatus returns the provider's raw status string for a charge.
	// The provider is the source of truth; callers normalize the value.
	ChargeStatus(ctx context.Context, paymentID int64) (string, error)
}
