package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"praxis/flow"
	"praxis/models"
	"praxis/session"
	"praxis/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// A step-mutating call holds this marker for its duration so no two
// mutations of the same wizard session are ever in flight concurrently.
const (
	mutationLockPrefix = "regLock:"
	mutationLockTTL    = 30 * time.Second
)

// Start opens a new wizard session. When the visitor arrives with the
// account type already chosen the select step is skipped.
func (s *DefaultRegistrationService) Start(ctx context.Context, accountType string) (*models.RegistrationSession, error) {
	sess := &models.RegistrationSession{
		ID:        uuid.New().String(),
		Step:      models.StepSelect,
		CreatedAt: time.Now(),
	}
	sess.MarkVisited(models.StepSelect)

	switch accountType {
	case "":
		// Stay on select.
	case models.AccountTypeIndividual, models.AccountTypeOrganization:
		sess.AccountType = accountType
		sess.Step = models.StepEmail
		sess.MarkVisited(models.StepEmail)
	default:
		return nil, flow.Validation("unknown account type %q", accountType)
	}

	if err := s.Store.SaveRegistration(ctx, sess); err != nil {
		return nil, flow.Transient("failed to start registration", err)
	}
	return sess, nil
}

// mutate loads the session, applies fn under the per-session mutation lock
// and persists the result. The session is saved even when fn returns a flow
// error so partial state (e.g. a terminal email status) survives reloads.
func (s *DefaultRegistrationService) mutate(ctx context.Context, sessionID string, fn func(sess *models.RegistrationSession) error) (*models.RegistrationSession, error) {
	lockKey := mutationLockPrefix + sessionID
	acquired, err := s.Store.AcquireOnce(ctx, lockKey, mutationLockTTL)
	if err != nil {
		return nil, flow.Transient("failed to lock registration session", err)
	}
	if !acquired {
		return nil, flow.Conflict("a previous step is still being processed")
	}
	defer func() {
		if err := s.Store.Release(ctx, lockKey); err != nil {
			utils.GetLogger().Warn("failed to release registration lock",
				zap.String("sessionId", sessionID), zap.Error(err))
		}
	}()

	sess, err := s.Store.GetRegistration(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, flow.Validation("registration session not found or expired")
		}
		return nil, flow.Transient("failed to load registration session", err)
	}

	fnErr := fn(sess)

	if err := s.Store.SaveRegistration(ctx, sess); err != nil {
		return nil, flow.Transient("failed to save registration session", err)
	}
	return sess, fnErr
}

// SelectAccountType handles select → email and resets any email state from a
// prior pass through the wizard.
func (s *DefaultRegistrationService) SelectAccountType(ctx context.Context, sessionID, accountType string) (*models.RegistrationSession, error) {
	return s.mutate(ctx, sessionID, func(sess *models.RegistrationSession) error {
		if accountType != models.AccountTypeIndividual && accountType != models.AccountTypeOrganization {
			return flow.Validation("unknown account type %q", accountType)
		}
		if sess.Step != models.StepSelect {
			return flow.Validation("account type can only be chosen at the start of registration")
		}
		sess.AccountType = accountType
		sess.Email = ""
		sess.EmailStatus = ""
		sess.Step = models.StepEmail
		sess.MarkVisited(models.StepEmail)
		return nil
	})
}

// CheckEmail classifies the email. exists_paid is terminal: the step never
// advances, regardless of how often the form is re-submitted.
func (s *DefaultRegistrationService) CheckEmail(ctx context.Context, sessionID, email string) (*models.RegistrationSession, error) {
	return s.mutate(ctx, sessionID, func(sess *models.RegistrationSession) error {
		if sess.Step != models.StepEmail {
			return flow.Validation("email can only be checked at the email step")
		}

		result, err := s.Accounts.CheckEmail(ctx, email)
		if err != nil {
			// Local form error; the step does not move.
			return err
		}

		sess.Email = email
		sess.EmailStatus = result.Status
		if result.Status == models.EmailStatusExistsPaid {
			return flow.Terminal("this email already belongs to a paid account; please log in instead")
		}

		sess.Step = models.StepDetails
		sess.MarkVisited(models.StepDetails)
		return nil
	})
}

// SubmitDetails validates the form locally, provisions the temp account and
// advances to payment. On the individual flow the pending credentials are
// persisted before the step moves, because the payment-return flow may need
// them as the fallback login path.
func (s *DefaultRegistrationService) SubmitDetails(ctx context.Context, sessionID string, details models.RegistrationDetails) (*models.RegistrationSession, error) {
	return s.mutate(ctx, sessionID, func(sess *models.RegistrationSession) error {
		if sess.Step != models.StepDetails {
			return flow.Validation("details can only be submitted at the details step")
		}
		if details.Password != details.ConfirmPassword {
			return flow.Validation("passwords do not match")
		}

		input := models.TempAccountInput{
			AccountType: sess.AccountType,
			Email:       sess.Email,
			Password:    details.Password,
			Name:        details.Name,
			AdminName:   details.AdminName,
			CompanyName: details.CompanyName,
			Seats:       details.Seats,
		}
		result, err := s.Accounts.CreateTempAccount(ctx, input)
		if err != nil {
			return err
		}

		sess.TempUserID = result.TempUserID
		sess.TempOrganizationID = result.TempOrganizationID
		if sess.AccountType == models.AccountTypeOrganization {
			sess.Seats = details.Seats
		} else {
			creds := session.PendingCredentials{
				Email:       sess.Email,
				Password:    details.Password,
				AccountType: sess.AccountType,
			}
			if err := s.Store.SavePendingCredentials(ctx, sess.ID, creds); err != nil {
				// Without the fallback credentials the payment-return flow
				// could strand a paid account; do not advance.
				return flow.Transient("failed to prepare registration, please try again", err)
			}
		}

		sess.Step = models.StepPayment
		sess.MarkVisited(models.StepPayment)
		return nil
	})
}

// Back moves payment → details; seats and email are retained.
func (s *DefaultRegistrationService) Back(ctx context.Context, sessionID string) (*models.RegistrationSession, error) {
	return s.mutate(ctx, sessionID, func(sess *models.RegistrationSession) error {
		if sess.Step != models.StepPayment {
			return flow.Validation("cannot go back from step %q", sess.Step)
		}
		sess.Step = models.StepDetails
		return nil
	})
}

// JumpTo performs a breadcrumb jump. Only backward jumps to already-visited
// steps are allowed; jumping to select resets the email state.
func (s *DefaultRegistrationService) JumpTo(ctx context.Context, sessionID, step string) (*models.RegistrationSession, error) {
	return s.mutate(ctx, sessionID, func(sess *models.RegistrationSession) error {
		switch step {
		case models.StepSelect, models.StepEmail, models.StepDetails:
		default:
			return flow.Validation("cannot jump to step %q", step)
		}
		if !sess.HasVisited(step) {
			return flow.Validation("step %q has not been visited yet", step)
		}
		if step == models.StepSelect {
			sess.Email = ""
			sess.EmailStatus = ""
		}
		sess.Step = step
		return nil
	})
}

// Proceed creates the checkout session for the temp account and returns the
// hosted payment URL. The wizard state is abandoned at redirect; everything
// the return trip needs is embedded in the success/cancel URLs and session
// metadata.
func (s *DefaultRegistrationService) Proceed(ctx context.Context, sessionID string) (string, error) {
	var redirectURL string
	_, err := s.mutate(ctx, sessionID, func(sess *models.RegistrationSession) error {
		if sess.Step != models.StepPayment {
			return flow.Validation("checkout can only start at the payment step")
		}
		if sess.TempUserID == "" {
			return flow.Validation("no account has been provisioned for this session")
		}

		checkoutSession, err := s.Broker.CreateSession(ctx, models.CheckoutSessionInput{
			TempUserID:         sess.TempUserID,
			TempOrganizationID: sess.TempOrganizationID,
			AccountType:        sess.AccountType,
			Seats:              sess.Seats,
			SuccessURL:         s.successURL(sess.ID),
			CancelURL:          s.cancelURL(sess.ID),
		})
		if err != nil {
			return err
		}
		redirectURL = checkoutSession.URL
		return nil
	})
	if err != nil {
		return "", err
	}
	return redirectURL, nil
}

// Teardown discards the wizard session and erases any pending credentials.
// It runs on navigation away and after every terminal outcome.
func (s *DefaultRegistrationService) Teardown(ctx context.Context, sessionID string) error {
	if err := s.Store.DeletePendingCredentials(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to clear pending credentials: %w", err)
	}
	if err := s.Store.DeleteRegistration(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to discard registration session: %w", err)
	}
	return nil
}

// successURL carries the checkout session id placeholder (substituted by the
// payment processor) plus the wizard session id, so the return trip is fully
// reconstructible from the URL alone.
func (s *DefaultRegistrationService) successURL(sessionID string) string {
	return fmt.Sprintf("%s/register?status=%s&session_id={CHECKOUT_SESSION_ID}&rid=%s",
		s.BaseURL, models.CheckoutStatusSuccess, sessionID)
}

func (s *DefaultRegistrationService) cancelURL(sessionID string) string {
	return fmt.Sprintf("%s/register?status=%s&rid=%s",
		s.BaseURL, models.CheckoutStatusCancelled, sessionID)
}
