// Package registration drives the account-provisioning wizard: an explicit
// step state machine whose session survives reloads and the external
// checkout redirect, plus the return-trip payment resolution.
package registration

import (
	"context"

	"praxis/models"
	"praxis/services/checkout"
	"praxis/session"
)

// AccountDirectory is the slice of the account service the wizard consumes.
type AccountDirectory interface {
	CheckEmail(ctx context.Context, email string) (*models.EmailCheckResult, error)
	CreateTempAccount(ctx context.Context, in models.TempAccountInput) (*models.TempAccountResult, error)
}

// PasswordAuthenticator is the fallback login path used on the return trip
// when verification yields no token.
type PasswordAuthenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
}

// RegistrationService owns the wizard step-transition rules and the
// payment-return resolution.
type RegistrationService interface {
	// Start opens a new wizard session, optionally skipping the select step
	// when the account type is already known.
	Start(ctx context.Context, accountType string) (*models.RegistrationSession, error)
	// SelectAccountType moves select → email, resetting email state.
	SelectAccountType(ctx context.Context, sessionID, accountType string) (*models.RegistrationSession, error)
	// CheckEmail classifies the email and advances to details unless the
	// email resolved to a paid account.
	CheckEmail(ctx context.Context, sessionID, email string) (*models.RegistrationSession, error)
	// SubmitDetails validates the form, provisions the temp account and
	// advances to payment.
	SubmitDetails(ctx context.Context, sessionID string, details models.RegistrationDetails) (*models.RegistrationSession, error)
	// Back moves payment → details, retaining seats and email.
	Back(ctx context.Context, sessionID string) (*models.RegistrationSession, error)
	// JumpTo performs a breadcrumb jump to an already-visited earlier step.
	JumpTo(ctx context.Context, sessionID, step string) (*models.RegistrationSession, error)
	// Proceed creates the checkout session and returns its redirect URL.
	Proceed(ctx context.Context, sessionID string) (string, error)
	// Teardown discards the wizard session and any pending credentials.
	Teardown(ctx context.Context, sessionID string) error

	// ResolveReturn handles the checkout return trip exactly once per
	// checkout session.
	ResolveReturn(ctx context.Context, sessionID, status, checkoutSessionID string) (*models.PaymentReturnOutcome, error)
}

// DefaultRegistrationService is the production implementation.
type DefaultRegistrationService struct {
	Store         session.Store
	Accounts      AccountDirectory
	Authenticator PasswordAuthenticator
	Broker        checkout.Broker
	Verifier      checkout.Verifier

	// BaseURL is the public origin the checkout success/cancel URLs point
	// back to.
	BaseURL string
}
