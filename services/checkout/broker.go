// Package checkout brokers the external hosted-payment flow: creating a
// checkout session for a temp account and verifying the session id carried
// back on the return trip.
package checkout

import (
	"context"

	"praxis/models"
)

// Broker requests a hosted-payment session for a temp account.
type Broker interface {
	// CreateSession returns the hosted checkout session; a response without
	// a URL is a fatal local error, never silently retried.
	CreateSession(ctx context.Context, in models.CheckoutSessionInput) (*models.CheckoutSession, error)
}

// Verifier checks a returned checkout session id and, when payment went
// through, finalizes the associated accounts.
type Verifier interface {
	VerifySession(ctx context.Context, checkoutSessionID string) (*models.CheckoutVerification, error)
}

// AccountFinalizer promotes temp records to paid accounts once the payment
// behind them is confirmed.
type AccountFinalizer interface {
	FinalizeCheckout(ctx context.Context, tempUserID, tempOrganizationID string) (*models.CheckoutVerification, error)
}
