// Package billing implements the post-login subscription lifecycle: seat
// upgrade pricing and requests, cancellation scheduling and its undo, for
// both organization and individual subscriptions.
package billing

import (
	"context"

	accountRepo "praxis/database/repository/account"
	"praxis/models"
)

// SubscriptionService owns the subscription lifecycle operations. Every
// mutating operation re-reads the freshest snapshot before and after acting
// so callers never operate on, or display, stale state.
type SubscriptionService interface {
	// Snapshot returns the current subscription state for the scope.
	Snapshot(ctx context.Context, scope models.SubscriptionScope) (*models.SubscriptionSnapshot, error)
	// QuoteSeatUpgrade prices an upgrade without applying it.
	QuoteSeatUpgrade(ctx context.Context, organizationID string, additionalSeats int) (*models.SeatUpgradeQuote, error)
	// UpgradeSeats applies a seat upgrade immediately; the billing date is
	// unchanged.
	UpgradeSeats(ctx context.Context, organizationID string, additionalSeats int) (*models.SubscriptionSnapshot, error)
	// ScheduleCancellation flags the subscription to lapse at period end.
	// An already-scheduled cancellation is success-equivalent, not an error.
	ScheduleCancellation(ctx context.Context, scope models.SubscriptionScope, reason string) (*models.SubscriptionSnapshot, error)
	// UndoCancellation clears the cancel-at-period-end flag; a flag that is
	// already clear makes the undo a benign no-op.
	UndoCancellation(ctx context.Context, scope models.SubscriptionScope) (*models.SubscriptionSnapshot, error)
}

// DefaultSubscriptionService is the production implementation.
type DefaultSubscriptionService struct {
	Users accountRepo.UserRepository
	Orgs  accountRepo.OrganizationRepository

	// UnitPrice is the flat per-seat price in the smallest currency unit.
	UnitPrice int64
}
