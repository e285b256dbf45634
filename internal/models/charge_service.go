package models

import "context"

// ChargeParams describes a hosted charge to create with the payment processor.
type ChargeParams struct {
	Name        string
	Description string
	Amount      string
	Currency    string
	// Username is the recipient handle, used to build the webhook callback URL.
	Username string
}

// Charge is the processor-side record of a checkout attempt.
type Charge struct {
	// ID is the opaque provider-assigned charge identifier.
	ID string
	// HostedURL is the checkout page the donor is redirected to.
	HostedURL string
}

// ChargeService creates hosted charges with the payment processor using a
// recipient's own API key.
type ChargeService interface {
	CreateCharge(ctx context.Context, apiKey string, params ChargeParams) (*Charge, error)
}
