package adapter

import (
	"context"
	"time"
)

// InitResult is the provider's answer to a transaction initialization.
type InitResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResult is the provider's view of a transaction after server-side
// verification. Status is the provider's payment status string; callers
// treat anything but "success" as a hard failure.
type VerifyResult struct {
	Status    string
	Reference string
	Amount    int64 // minor currency units
	Email     string
	Plan      string // from transaction metadata, may be empty
	PaidAt    time.Time
}

// PaymentGateway is the hex port for the payment provider.
type PaymentGateway interface {
	Name() string
	// Initialize creates a transaction and returns the redirect target.
	Initialize(ctx context.Context, email string, amountMinor int64, callbackURL string, meta map[string]interface{}) (*InitResult, error)
	// Verify confirms a client-reported reference server-to-server.
	// A transport or non-2xx failure is an error; an unsuccessful payment
	// comes back as a result with its provider status.
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}
