package registration

import (
	"context"
	"errors"
	"time"

	"praxis/flow"
	"praxis/models"
	"praxis/session"
	"praxis/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	returnMarkerPrefix = "returnOnce:"
	returnMarkerTTL    = 10 * time.Minute
)

// ResolveReturn handles the checkout return trip. A cancelled return is an
// idempotent no-op redirect. A success return runs the verification and
// recovery chain exactly once per checkout session: replays observe the
// recorded outcome instead of repeating the login side effects.
func (s *DefaultRegistrationService) ResolveReturn(ctx context.Context, sessionID, status, checkoutSessionID string) (*models.PaymentReturnOutcome, error) {
	switch status {
	case models.CheckoutStatusCancelled:
		return s.resolveCancelled(ctx, sessionID), nil
	case models.CheckoutStatusSuccess:
		if checkoutSessionID == "" {
			return nil, flow.Validation("missing checkout session id")
		}
	default:
		return nil, flow.Validation("unknown checkout return status %q", status)
	}

	marker := returnMarkerPrefix + checkoutSessionID
	acquired, err := s.Store.AcquireOnce(ctx, marker, returnMarkerTTL)
	if err != nil {
		return nil, flow.Transient("failed to guard payment confirmation", err)
	}
	if !acquired {
		recorded, err := s.Store.GetReturnOutcome(ctx, checkoutSessionID)
		if err == nil {
			return recorded, errorFromOutcome(recorded)
		}
		return nil, flow.Conflict("payment confirmation is already being processed")
	}

	outcome, resolveErr := s.resolveSuccess(ctx, sessionID, checkoutSessionID)
	if outcome != nil {
		// Terminal either way; replays must see the same answer.
		if err := s.Store.SaveReturnOutcome(ctx, checkoutSessionID, *outcome); err != nil {
			utils.GetLogger().Error("failed to record payment return outcome",
				zap.String("checkoutSessionId", checkoutSessionID), zap.Error(err))
		}
	} else {
		// Nothing irreversible happened; release the guard so an explicit
		// user retry can run the chain again.
		if err := s.Store.Release(ctx, marker); err != nil {
			utils.GetLogger().Warn("failed to release payment return guard",
				zap.String("checkoutSessionId", checkoutSessionID), zap.Error(err))
		}
	}
	return outcome, resolveErr
}

// resolveCancelled returns the visitor to a clean registration entry with the
// URL parameters stripped. It never verifies and never attempts a login.
func (s *DefaultRegistrationService) resolveCancelled(ctx context.Context, sessionID string) *models.PaymentReturnOutcome {
	if sessionID != "" {
		if sess, err := s.Store.GetRegistration(ctx, sessionID); err == nil {
			sess.Step = models.StepPayment
			if err := s.Store.SaveRegistration(ctx, sess); err != nil {
				utils.GetLogger().Warn("failed to restore wizard after cancelled checkout",
					zap.String("sessionId", sessionID), zap.Error(err))
			}
		}
	}
	return &models.PaymentReturnOutcome{
		Status:       models.CheckoutStatusCancelled,
		RedirectPath: "/register",
	}
}

// resolveSuccess is the recovery chain of §payment verification. A nil
// outcome means nothing side-effectful happened and the caller may retry.
func (s *DefaultRegistrationService) resolveSuccess(ctx context.Context, sessionID, checkoutSessionID string) (*models.PaymentReturnOutcome, error) {
	logger := utils.GetLogger()

	// Step 1: verify the session against the payment processor.
	verification, err := s.Verifier.VerifySession(ctx, checkoutSessionID)
	if err != nil {
		logger.Error("checkout session verification failed",
			zap.String("checkoutSessionId", checkoutSessionID), zap.Error(err))
		return nil, err
	}

	// Step 2: the preferred, stateless path: verification carried both a
	// token and the user record. Pending credentials are never consulted.
	if verification.Token != "" && verification.User != nil {
		return s.adoptSession(ctx, sessionID, verification.User, verification.Token)
	}

	// Step 3: fall back to the pending credentials persisted before the
	// redirect. Their absence is the unrecoverable-but-paid state: payment
	// has succeeded and must not be retried.
	if sessionID == "" {
		return s.loginFailedOutcome(), flow.PaymentVerifiedLoginFailed(paymentVerifiedLoginFailedMessage)
	}
	creds, err := s.Store.GetPendingCredentials(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return s.loginFailedOutcome(), flow.PaymentVerifiedLoginFailed(paymentVerifiedLoginFailedMessage)
		}
		return nil, flow.Transient("failed to load pending credentials", err)
	}

	// Step 4: password login with the pending credentials. On failure the
	// credentials are retained; they are the user's only remaining login
	// path until the error has actually been seen.
	usr, token, err := s.Authenticator.Authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		logger.Error("fallback login after verified payment failed",
			zap.String("checkoutSessionId", checkoutSessionID), zap.Error(err))
		return nil, flow.PaymentVerifiedLoginFailed(paymentVerifiedLoginFailedMessage)
	}

	return s.adoptSession(ctx, sessionID, usr, token)
}

const paymentVerifiedLoginFailedMessage = "your payment was received but signing you in failed; please log in with your email and password, and do not pay again"

// adoptSession establishes the durable auth session, erases the sensitive
// registration leftovers and routes by role.
func (s *DefaultRegistrationService) adoptSession(ctx context.Context, sessionID string, usr *models.User, token string) (*models.PaymentReturnOutcome, error) {
	authSessionID := uuid.New().String()
	auth := session.AuthSession{
		Token:     token,
		User:      *usr,
		CreatedAt: time.Now(),
	}
	if err := s.Store.SaveAuth(ctx, authSessionID, auth); err != nil {
		return nil, flow.Transient("failed to establish session", err)
	}

	if sessionID != "" {
		if err := s.Store.DeletePendingCredentials(ctx, sessionID); err != nil {
			utils.GetLogger().Warn("failed to erase pending credentials",
				zap.String("sessionId", sessionID), zap.Error(err))
		}
		if err := s.Store.DeleteRegistration(ctx, sessionID); err != nil {
			utils.GetLogger().Warn("failed to discard registration session",
				zap.String("sessionId", sessionID), zap.Error(err))
		}
	}

	return &models.PaymentReturnOutcome{
		Status:        models.CheckoutStatusSuccess,
		RedirectPath:  models.DashboardPathForRole(usr.Role),
		AuthSessionID: authSessionID,
		Token:         token,
		UserID:        usr.ID,
	}, nil
}

func (s *DefaultRegistrationService) loginFailedOutcome() *models.PaymentReturnOutcome {
	return &models.PaymentReturnOutcome{
		Status:       models.CheckoutStatusSuccess,
		RedirectPath: "/login",
		ErrorKind:    string(flow.KindPaymentVerifiedLoginFailed),
		ErrorMessage: paymentVerifiedLoginFailedMessage,
	}
}

// errorFromOutcome reconstructs the flow error recorded with a replayed
// outcome, so re-invocations surface the same result as the original run.
func errorFromOutcome(outcome *models.PaymentReturnOutcome) error {
	if outcome == nil || outcome.ErrorKind == "" {
		return nil
	}
	if outcome.ErrorKind == string(flow.KindPaymentVerifiedLoginFailed) {
		return flow.PaymentVerifiedLoginFailed(outcome.ErrorMessage)
	}
	return &flow.Error{Kind: flow.Kind(outcome.ErrorKind), Message: outcome.ErrorMessage}
}
