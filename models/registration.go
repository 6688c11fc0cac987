package models

import "time"

// Wizard steps, in forward order.
const (
	StepSelect  = "select"
	StepEmail   = "email"
	StepDetails = "details"
	StepPayment = "payment"

	// StepProcessingPayment is entered only via the checkout return trip,
	// never through a wizard button.
	StepProcessingPayment = "processing_payment"
)

// Email availability statuses returned by the email check.
const (
	EmailStatusNew            = "new"
	EmailStatusUnpaidExisting = "unpaid_existing"
	EmailStatusExistsPaid     = "exists_paid"
)

// RegistrationSession holds all transient data during the multi-step
// registration wizard. It survives page reloads and the external checkout
// redirect; it is discarded on teardown or once a login is established.
type RegistrationSession struct {
	ID           string   `json:"id"`
	AccountType  string   `json:"accountType,omitempty"`
	Step         string   `json:"step"`
	Email        string   `json:"email,omitempty"`
	EmailStatus  string   `json:"emailStatus,omitempty"`
	Seats        int      `json:"seats,omitempty"` // organization flow only
	VisitedSteps []string `json:"visitedSteps,omitempty"`

	TempUserID         string `json:"tempUserId,omitempty"`
	TempOrganizationID string `json:"tempOrganizationId,omitempty"`

	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// HasVisited reports whether the given step was already reached in this session.
func (s *RegistrationSession) HasVisited(step string) bool {
	for _, v := range s.VisitedSteps {
		if v == step {
			return true
		}
	}
	return false
}

// MarkVisited records a step as reached, once.
func (s *RegistrationSession) MarkVisited(step string) {
	if !s.HasVisited(step) {
		s.VisitedSteps = append(s.VisitedSteps, step)
	}
}

// RegistrationDetails is the details-step form payload.
type RegistrationDetails struct {
	Name            string `json:"name,omitempty"`        // individual flow
	AdminName       string `json:"adminName,omitempty"`   // organization flow
	CompanyName     string `json:"companyName,omitempty"` // organization flow
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Seats           int    `json:"seats,omitempty"` // organization flow
}

// TempAccountInput is the validated payload handed to the provisioner.
type TempAccountInput struct {
	AccountType string
	Email       string
	Password    string
	Name        string // individual flow
	AdminName   string // organization flow
	CompanyName string // organization flow
	Seats       int    // organization flow
}

// EmailCheckResult is the outcome of an email availability check.
type EmailCheckResult struct {
	Status            string `json:"status"`
	RedirectToPayment bool   `json:"redirectToPayment,omitempty"`
	AccountType       string `json:"accountType,omitempty"`
}

// TempAccountResult identifies the provisional records created before checkout.
type TempAccountResult struct {
	TempUserID         string `json:"tempUserId"`
	TempOrganizationID string `json:"tempOrganizationId,omitempty"`
}

// RegistrationRequest is the composite request payload for the multi-step
// wizard endpoint. The client includes the "step" field to indicate which
// transition is being executed.
type RegistrationRequest struct {
	Step        string               `json:"step"` // "start", "select", "email", "details", "back", "jump", "proceed", "teardown"
	SessionID   string               `json:"sessionID,omitempty"`
	AccountType string               `json:"accountType,omitempty"`
	Email       string               `json:"email,omitempty"`
	TargetStep  string               `json:"targetStep,omitempty"` // for breadcrumb jumps
	Details     *RegistrationDetails `json:"details,omitempty"`
}
