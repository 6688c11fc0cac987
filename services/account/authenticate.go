package account

import (
	"context"
	"fmt"
	"time"

	"praxis/flow"
	"praxis/models"
	"praxis/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Authenticate verifies the password for the given email and returns the
// user together with a freshly issued token.
func (s *DefaultAccountService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	usr, err := s.Users.GetByEmail(email)
	if err != nil {
		utils.GetLogger().Error("Authenticate: failed to fetch user", zap.Error(err))
		return nil, "", flow.Transient("authentication failed, please try again", err)
	}
	if usr == nil {
		return nil, "", fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("invalid email or password")
	}

	token, err := utils.GenerateToken(usr.ID, usr.Email, usr.Role, s.tokenTTL())
	if err != nil {
		return nil, "", flow.Transient("authentication failed, please try again", err)
	}
	return usr, token, nil
}

// FinalizeCheckout marks the temp records created before checkout as paid and
// issues a session token. Token issuance failure is not fatal: the caller
// falls back to pending-credentials login, since the payment itself has
// already succeeded and must not be retried.
func (s *DefaultAccountService) FinalizeCheckout(ctx context.Context, tempUserID, tempOrganizationID string) (*models.CheckoutVerification, error) {
	usr, err := s.Users.GetByID(tempUserID)
	if err != nil {
		return nil, flow.Transient("failed to load account for checkout finalization", err)
	}
	if usr == nil {
		return nil, flow.Transient("no account found for the verified checkout session", nil)
	}

	periodEnd := time.Now().AddDate(0, 1, 0)
	update := bson.M{
		"paid":                true,
		"subscriptionStatus":  models.SubscriptionActive,
		"subscriptionEndDate": periodEnd,
		"cancelAtPeriodEnd":   false,
	}
	if err := s.Users.UpdateSetDocument(usr.ID, update); err != nil {
		return nil, flow.Transient("failed to activate account", err)
	}

	if tempOrganizationID != "" {
		orgUpdate := bson.M{
			"paid":                true,
			"subscriptionStatus":  models.SubscriptionActive,
			"subscriptionEndDate": periodEnd,
			"cancelAtPeriodEnd":   false,
		}
		if err := s.Orgs.UpdateSetDocument(tempOrganizationID, orgUpdate); err != nil {
			return nil, flow.Transient("failed to activate organization", err)
		}
	}

	usr, err = s.Users.GetByID(tempUserID)
	if err != nil || usr == nil {
		return nil, flow.Transient("failed to reload activated account", err)
	}

	token, err := utils.GenerateToken(usr.ID, usr.Email, usr.Role, s.tokenTTL())
	if err != nil {
		// Degraded but recoverable: the account is live, only the direct
		// session is missing.
		utils.GetLogger().Error("FinalizeCheckout: token issuance failed",
			zap.String("userId", usr.ID), zap.Error(err))
		return &models.CheckoutVerification{User: usr}, nil
	}

	return &models.CheckoutVerification{User: usr, Token: token}, nil
}

func (s *DefaultAccountService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	return 24 * time.Hour
}
