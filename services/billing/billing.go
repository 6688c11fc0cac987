package billing

import (
	"context"

	"praxis/flow"
	"praxis/models"
	"praxis/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func (s *DefaultSubscriptionService) Snapshot(ctx context.Context, scope models.SubscriptionScope) (*models.SubscriptionSnapshot, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	if scope.OrganizationID != "" {
		return s.orgSnapshot(scope.OrganizationID)
	}
	return s.userSnapshot(scope.UserID)
}

// QuoteSeatUpgrade prices an upgrade against the freshest seat count.
func (s *DefaultSubscriptionService) QuoteSeatUpgrade(ctx context.Context, organizationID string, additionalSeats int) (*models.SeatUpgradeQuote, error) {
	if additionalSeats < 1 {
		return nil, flow.Validation("at least one additional seat is required")
	}
	snap, err := s.orgSnapshot(organizationID)
	if err != nil {
		return nil, err
	}
	quote := QuoteSeats(snap.SeatsTotal, additionalSeats, s.UnitPrice)
	return &quote, nil
}

// UpgradeSeats applies the upgrade immediately: the new seats are usable at
// once and the billing date does not move. The returned snapshot is re-read
// after the write so the caller displays the new totals, never a stale copy.
func (s *DefaultSubscriptionService) UpgradeSeats(ctx context.Context, organizationID string, additionalSeats int) (*models.SubscriptionSnapshot, error) {
	if additionalSeats < 1 {
		return nil, flow.Validation("at least one additional seat is required")
	}

	snap, err := s.orgSnapshot(organizationID)
	if err != nil {
		return nil, err
	}

	update := bson.M{"seatsTotal": snap.SeatsTotal + additionalSeats}
	if err := s.Orgs.UpdateSetDocument(organizationID, update); err != nil {
		return nil, flow.Transient("failed to upgrade seats", err)
	}

	utils.GetLogger().Info("seats upgraded",
		zap.String("organizationId", organizationID),
		zap.Int("additionalSeats", additionalSeats))

	return s.orgSnapshot(organizationID)
}

// ScheduleCancellation flags the subscription to lapse at the current billing
// cycle's end. When the flag is already set the desired end state holds, so
// the call is treated as success-equivalent rather than surfaced as a failure.
func (s *DefaultSubscriptionService) ScheduleCancellation(ctx context.Context, scope models.SubscriptionScope, reason string) (*models.SubscriptionSnapshot, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}

	snap, err := s.Snapshot(ctx, scope)
	if err != nil {
		return nil, err
	}
	if snap.CancelAtPeriodEnd {
		utils.GetLogger().Info("cancellation already scheduled",
			zap.String("organizationId", scope.OrganizationID),
			zap.String("userId", scope.UserID))
		return snap, nil
	}

	update := bson.M{"cancelAtPeriodEnd": true}
	if reason != "" {
		update["cancelReason"] = reason
	}
	if err := s.applyUpdate(scope, update); err != nil {
		return nil, flow.Transient("failed to schedule cancellation", err)
	}

	return s.Snapshot(ctx, scope)
}

// UndoCancellation clears the cancel-at-period-end flag so the subscription
// continues uninterrupted past period end. An already-clear flag makes the
// undo a benign no-op; no other field is touched either way.
func (s *DefaultSubscriptionService) UndoCancellation(ctx context.Context, scope models.SubscriptionScope) (*models.SubscriptionSnapshot, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}

	snap, err := s.Snapshot(ctx, scope)
	if err != nil {
		return nil, err
	}
	if !snap.CancelAtPeriodEnd {
		return snap, nil
	}

	update := bson.M{"cancelAtPeriodEnd": false, "cancelReason": ""}
	if err := s.applyUpdate(scope, update); err != nil {
		return nil, flow.Transient("failed to undo cancellation", err)
	}

	return s.Snapshot(ctx, scope)
}

func (s *DefaultSubscriptionService) applyUpdate(scope models.SubscriptionScope, update bson.M) error {
	if scope.OrganizationID != "" {
		return s.Orgs.UpdateSetDocument(scope.OrganizationID, update)
	}
	return s.Users.UpdateSetDocument(scope.UserID, update)
}

func (s *DefaultSubscriptionService) orgSnapshot(organizationID string) (*models.SubscriptionSnapshot, error) {
	org, err := s.Orgs.GetByID(organizationID)
	if err != nil {
		return nil, flow.Transient("failed to load subscription", err)
	}
	if org == nil {
		return nil, flow.Validation("organization %s not found", organizationID)
	}
	return &models.SubscriptionSnapshot{
		OrganizationID:      org.ID,
		Status:              org.SubscriptionStatus,
		SubscriptionEndDate: org.SubscriptionEndDate,
		SeatsTotal:          org.SeatsTotal,
		CancelAtPeriodEnd:   org.CancelAtPeriodEnd,
	}, nil
}

func (s *DefaultSubscriptionService) userSnapshot(userID string) (*models.SubscriptionSnapshot, error) {
	usr, err := s.Users.GetByID(userID)
	if err != nil {
		return nil, flow.Transient("failed to load subscription", err)
	}
	if usr == nil {
		return nil, flow.Validation("user %s not found", userID)
	}
	return &models.SubscriptionSnapshot{
		UserID:              usr.ID,
		Status:              usr.SubscriptionStatus,
		SubscriptionEndDate: usr.SubscriptionEndDate,
		CancelAtPeriodEnd:   usr.CancelAtPeriodEnd,
	}, nil
}

func validateScope(scope models.SubscriptionScope) error {
	if (scope.OrganizationID == "") == (scope.UserID == "") {
		return flow.Validation("exactly one of organizationId or userId is required")
	}
	return nil
}
