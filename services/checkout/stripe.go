package checkout

import (
	"context"
	"fmt"

	"praxis/flow"
	"praxis/models"
	"praxis/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"go.uber.org/zap"
)

// Metadata keys carried on the checkout session; the return trip recovers
// the temp-account identity from these, not from wizard state.
const (
	metaTempUserID         = "tempUserId"
	metaTempOrganizationID = "tempOrganizationId"
	metaAccountType        = "accountType"
	metaSeats              = "seats"
)

// StripeGateway implements Broker and Verifier against Stripe Checkout.
// The package-level stripe.Key is set during startup.
type StripeGateway struct {
	Finalizer AccountFinalizer

	// Per-seat flat price in the smallest currency unit.
	SeatUnitPrice int64
	Currency      string
	ProductName   string
}

// CreateSession opens a subscription-mode checkout session for the seat count.
// Individual accounts are billed as a single seat.
func (g *StripeGateway) CreateSession(ctx context.Context, in models.CheckoutSessionInput) (*models.CheckoutSession, error) {
	quantity := int64(1)
	if in.AccountType == models.AccountTypeOrganization {
		quantity = int64(in.Seats)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(quantity),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(g.Currency),
					UnitAmount: stripe.Int64(g.SeatUnitPrice),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(g.productName()),
					},
				},
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(metaTempUserID, in.TempUserID)
	params.AddMetadata(metaTempOrganizationID, in.TempOrganizationID)
	params.AddMetadata(metaAccountType, in.AccountType)
	params.AddMetadata(metaSeats, fmt.Sprintf("%d", in.Seats))

	sess, err := session.New(params)
	if err != nil {
		return nil, flow.Transient("failed to create checkout session", err)
	}
	if sess.URL == "" {
		// Stripe answered without a redirect URL; retrying the same request
		// will not help, the user has to re-submit.
		utils.GetLogger().Error("checkout session created without URL",
			zap.String("sessionId", sess.ID))
		return nil, flow.Fatal(flow.CodeCheckoutNoURL, "checkout session has no redirect URL")
	}

	return &models.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// VerifySession confirms the returned session id was actually paid, then
// hands the temp-account identity from the session metadata to the finalizer.
func (g *StripeGateway) VerifySession(ctx context.Context, checkoutSessionID string) (*models.CheckoutVerification, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(checkoutSessionID, params)
	if err != nil {
		return nil, flow.Transient("failed to verify checkout session", err)
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid &&
		sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusNoPaymentRequired {
		return nil, flow.Transient(fmt.Sprintf("checkout session is not paid (status %s)", sess.PaymentStatus), nil)
	}

	tempUserID := sess.Metadata[metaTempUserID]
	if tempUserID == "" {
		return nil, flow.Transient("checkout session carries no account identity", nil)
	}

	return g.Finalizer.FinalizeCheckout(ctx, tempUserID, sess.Metadata[metaTempOrganizationID])
}

func (g *StripeGateway) productName() string {
	if g.ProductName != "" {
		return g.ProductName
	}
	return "Praxis seat"
}
