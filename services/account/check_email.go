package account

import (
	"context"
	"net/mail"

	"praxis/flow"
	"praxis/models"
)

// CheckEmail resolves an email to one of the closed set of account statuses.
// exists_paid is terminal for the registration flow; unpaid_existing signals
// that the visitor may skip straight to payment for the account they already
// started creating.
func (s *DefaultAccountService) CheckEmail(ctx context.Context, email string) (*models.EmailCheckResult, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, flow.Validation("a valid email address is required")
	}

	usr, err := s.Users.GetByEmail(email)
	if err != nil {
		return nil, flow.Transient("failed to check email availability", err)
	}
	if usr != nil {
		if usr.Paid {
			return &models.EmailCheckResult{
				Status:      models.EmailStatusExistsPaid,
				AccountType: usr.AccountType,
			}, nil
		}
		return &models.EmailCheckResult{
			Status:            models.EmailStatusUnpaidExisting,
			RedirectToPayment: true,
			AccountType:       usr.AccountType,
		}, nil
	}

	// An organization record can exist without its admin user when a prior
	// provisioning attempt was interrupted halfway.
	org, err := s.Orgs.GetByAdminEmail(email)
	if err != nil {
		return nil, flow.Transient("failed to check email availability", err)
	}
	if org != nil {
		if org.Paid {
			return &models.EmailCheckResult{
				Status:      models.EmailStatusExistsPaid,
				AccountType: models.AccountTypeOrganization,
			}, nil
		}
		return &models.EmailCheckResult{
			Status:            models.EmailStatusUnpaidExisting,
			RedirectToPayment: true,
			AccountType:       models.AccountTypeOrganization,
		}, nil
	}

	return &models.EmailCheckResult{Status: models.EmailStatusNew}, nil
}
