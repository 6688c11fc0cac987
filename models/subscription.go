package models

import "time"

// Well-known subscription states.
const (
	SubscriptionActive   = "active"
	SubscriptionPastDue  = "past_due"
	SubscriptionCanceled = "canceled"
)

// SubscriptionScope identifies whose subscription an operation targets:
// exactly one of OrganizationID or UserID is set.
type SubscriptionScope struct {
	OrganizationID string `json:"organizationId,omitempty"`
	UserID         string `json:"userId,omitempty"`
}

// SubscriptionSnapshot is a point-in-time read of a subscription. Lifecycle
// operations re-read it before and after acting so callers never display
// stale seat or cancellation state.
type SubscriptionSnapshot struct {
	OrganizationID      string    `json:"organizationId,omitempty"`
	UserID              string    `json:"userId,omitempty"`
	Status              string    `json:"status"`
	SubscriptionEndDate time.Time `json:"subscriptionEndDate"`
	SeatsTotal          int       `json:"seatsTotal,omitempty"`
	CancelAtPeriodEnd   bool      `json:"cancelAtPeriodEnd"`
}

// SeatUpgradeQuote prices a seat upgrade. Pricing is flat and non-prorated:
// the new seats are usable at once and the billing date does not move.
type SeatUpgradeQuote struct {
	AdditionalSeats       int   `json:"additionalSeats"`
	UnitPrice             int64 `json:"unitPrice"`
	SeatsTotalAfter       int   `json:"seatsTotalAfter"`
	ExtraPaymentThisMonth int64 `json:"extraPaymentThisMonth"`
	MonthlyRecurring      int64 `json:"monthlyRecurring"`
}
