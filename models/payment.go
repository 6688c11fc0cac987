package models

// Checkout return-trip query parameter values.
const (
	CheckoutStatusSuccess   = "success"
	CheckoutStatusCancelled = "cancelled"
)

// CheckoutSessionInput carries the durable identity embedded into a hosted
// checkout session: everything the return trip needs survives in the session
// metadata and the success/cancel URLs, not in wizard state.
type CheckoutSessionInput struct {
	TempUserID         string
	TempOrganizationID string
	AccountType        string
	Seats              int
	SuccessURL         string
	CancelURL          string
}

// CheckoutSession is an externally hosted one-time payment flow.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutVerification is the result of verifying a returned checkout
// session id. Token may be empty, in which case the caller falls back to
// pending-credentials login.
type CheckoutVerification struct {
	User  *User  `json:"user,omitempty"`
	Token string `json:"token,omitempty"`
}

// PaymentReturnOutcome is the recorded terminal result of a payment-return
// resolution. Replays of the same return trip are answered from this record.
type PaymentReturnOutcome struct {
	Status        string `json:"status"`
	RedirectPath  string `json:"redirectPath"`
	AuthSessionID string `json:"authSessionId,omitempty"`
	Token         string `json:"token,omitempty"`
	UserID        string `json:"userId,omitempty"`
	ErrorKind     string `json:"errorKind,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}
