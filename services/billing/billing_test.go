package billing

import (
	"context"
	"testing"
	"time"

	accountRepo "praxis/database/repository/account"
	"praxis/flow"
	"praxis/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unitPrice = int64(2900)

func newService(t *testing.T) (*DefaultSubscriptionService, *accountRepo.MemoryUserRepo, *accountRepo.MemoryOrganizationRepo) {
	t.Helper()
	users := accountRepo.NewMemoryUserRepo()
	orgs := accountRepo.NewMemoryOrganizationRepo()
	return &DefaultSubscriptionService{Users: users, Orgs: orgs, UnitPrice: unitPrice}, users, orgs
}

func seedOrg(t *testing.T, orgs *accountRepo.MemoryOrganizationRepo, seats int) *models.Organization {
	t.Helper()
	org := &models.Organization{
		ID:                  "org-1",
		CompanyName:         "Praxis Nord",
		AdminEmail:          "admin@praxisnord.de",
		SeatsTotal:          seats,
		Paid:                true,
		SubscriptionStatus:  models.SubscriptionActive,
		SubscriptionEndDate: time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, orgs.Create(org))
	return org
}

func seedUser(t *testing.T, users *accountRepo.MemoryUserRepo) *models.User {
	t.Helper()
	usr := &models.User{
		ID:                  "user-1",
		Email:               "solo@example.com",
		AccountType:         models.AccountTypeIndividual,
		Role:                models.RolePsychologist,
		Paid:                true,
		SubscriptionStatus:  models.SubscriptionActive,
		SubscriptionEndDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, users.Create(usr))
	return usr
}

func TestQuoteSeatsFlatPricing(t *testing.T) {
	tests := []struct {
		name            string
		currentSeats    int
		additionalSeats int
	}{
		{"single seat", 4, 1},
		{"a few seats", 4, 3},
		{"doubling", 10, 10},
		{"large team", 25, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := QuoteSeats(tt.currentSeats, tt.additionalSeats, unitPrice)

			assert.Equal(t, int64(tt.additionalSeats)*unitPrice, quote.ExtraPaymentThisMonth,
				"extra payment is the new seats at full price, no proration")
			assert.Equal(t, int64(tt.currentSeats+tt.additionalSeats)*unitPrice, quote.MonthlyRecurring)
			assert.Equal(t, tt.currentSeats+tt.additionalSeats, quote.SeatsTotalAfter)
		})
	}
}

func TestQuoteSeatUpgradeRejectsNonPositive(t *testing.T) {
	svc, _, orgs := newService(t)
	seedOrg(t, orgs, 5)

	for _, n := range []int{0, -1} {
		_, err := svc.QuoteSeatUpgrade(context.Background(), "org-1", n)
		require.Error(t, err)
		assert.Equal(t, flow.KindValidation, flow.KindOf(err))
	}
}

func TestUpgradeSeatsAppliesImmediatelyAndRefreshes(t *testing.T) {
	svc, _, orgs := newService(t)
	org := seedOrg(t, orgs, 5)

	snap, err := svc.UpgradeSeats(context.Background(), org.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, 8, snap.SeatsTotal, "returned snapshot reflects the new seat total")
	assert.Equal(t, org.SubscriptionEndDate, snap.SubscriptionEndDate, "billing date is unchanged")
	assert.Equal(t, models.SubscriptionActive, snap.Status)

	stored, err := orgs.GetByID(org.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.SeatsTotal)
}

func TestUpgradeSeatsRejectsNonPositive(t *testing.T) {
	svc, _, orgs := newService(t)
	seedOrg(t, orgs, 5)

	_, err := svc.UpgradeSeats(context.Background(), "org-1", 0)
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))

	stored, err := orgs.GetByID("org-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.SeatsTotal, "seat count untouched")
}

func TestScheduleCancellationIsIdempotent(t *testing.T) {
	svc, _, orgs := newService(t)
	org := seedOrg(t, orgs, 5)
	scope := models.SubscriptionScope{OrganizationID: org.ID}

	first, err := svc.ScheduleCancellation(context.Background(), scope, "switching tools")
	require.NoError(t, err)
	assert.True(t, first.CancelAtPeriodEnd)
	assert.Equal(t, models.SubscriptionActive, first.Status,
		"cancellation takes effect only at period end")

	// Scheduling again must not surface as a failure: the desired end state
	// already holds.
	second, err := svc.ScheduleCancellation(context.Background(), scope, "")
	require.NoError(t, err)
	assert.True(t, second.CancelAtPeriodEnd)
}

func TestUndoCancellationRoundTrip(t *testing.T) {
	svc, _, orgs := newService(t)
	org := seedOrg(t, orgs, 5)
	scope := models.SubscriptionScope{OrganizationID: org.ID}

	before, err := svc.Snapshot(context.Background(), scope)
	require.NoError(t, err)

	_, err = svc.ScheduleCancellation(context.Background(), scope, "trying a break")
	require.NoError(t, err)

	after, err := svc.UndoCancellation(context.Background(), scope)
	require.NoError(t, err)

	assert.False(t, after.CancelAtPeriodEnd)
	assert.Equal(t, before.Status, after.Status, "no other field mutated")
	assert.Equal(t, before.SubscriptionEndDate, after.SubscriptionEndDate)
	assert.Equal(t, before.SeatsTotal, after.SeatsTotal)
}

func TestUndoCancellationWhenNotScheduledIsNoOp(t *testing.T) {
	svc, _, orgs := newService(t)
	org := seedOrg(t, orgs, 5)
	scope := models.SubscriptionScope{OrganizationID: org.ID}

	snap, err := svc.UndoCancellation(context.Background(), scope)
	require.NoError(t, err)
	assert.False(t, snap.CancelAtPeriodEnd)
}

func TestIndividualScopeHasSameSemantics(t *testing.T) {
	svc, users, _ := newService(t)
	usr := seedUser(t, users)
	scope := models.SubscriptionScope{UserID: usr.ID}

	snap, err := svc.ScheduleCancellation(context.Background(), scope, "")
	require.NoError(t, err)
	assert.True(t, snap.CancelAtPeriodEnd)

	snap, err = svc.ScheduleCancellation(context.Background(), scope, "")
	require.NoError(t, err)
	assert.True(t, snap.CancelAtPeriodEnd)

	snap, err = svc.UndoCancellation(context.Background(), scope)
	require.NoError(t, err)
	assert.False(t, snap.CancelAtPeriodEnd)
	assert.Equal(t, usr.SubscriptionEndDate, snap.SubscriptionEndDate)
}

func TestScopeValidation(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Snapshot(context.Background(), models.SubscriptionScope{})
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))

	_, err = svc.Snapshot(context.Background(), models.SubscriptionScope{
		OrganizationID: "org-1", UserID: "user-1",
	})
	require.Error(t, err)
	assert.Equal(t, flow.KindValidation, flow.KindOf(err))
}
