package account

import (
	"context"
	"time"

	accountRepo "praxis/database/repository/account"
	"praxis/models"
)

// AccountService owns account records around the registration flow: email
// availability, temp-account provisioning, password authentication and
// post-checkout finalization.
type AccountService interface {
	// CheckEmail classifies an email against existing account records.
	CheckEmail(ctx context.Context, email string) (*models.EmailCheckResult, error)
	// CreateTempAccount provisions a not-yet-paid user (and organization).
	CreateTempAccount(ctx context.Context, in models.TempAccountInput) (*models.TempAccountResult, error)
	// Authenticate verifies a password and returns the user plus a fresh token.
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
	// FinalizeCheckout promotes temp records to paid ones after a verified
	// checkout and issues a session token when possible.
	FinalizeCheckout(ctx context.Context, tempUserID, tempOrganizationID string) (*models.CheckoutVerification, error)
}

// PurgeScheduler enqueues delayed cleanup of temp accounts that never pay.
type PurgeScheduler interface {
	SchedulePurge(userID, organizationID string, delay time.Duration) error
}

// DefaultAccountService is the production implementation.
type DefaultAccountService struct {
	Users accountRepo.UserRepository
	Orgs  accountRepo.OrganizationRepository

	// Purge is optional; when nil temp accounts are left to manual cleanup.
	Purge PurgeScheduler

	MinOrgSeats    int
	TempAccountTTL time.Duration
	TokenTTL       time.Duration
}
