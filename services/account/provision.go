package account

import (
	"context"

	"praxis/flow"
	"praxis/models"
	"praxis/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// CreateTempAccount provisions a not-yet-paid user record, and for
// organizations a not-yet-paid organization record alongside it. Validation
// happens here before anything is written; the records are superseded by
// paid ones once checkout completes, or purged after TempAccountTTL.
func (s *DefaultAccountService) CreateTempAccount(ctx context.Context, in models.TempAccountInput) (*models.TempAccountResult, error) {
	if err := s.validateTempAccountInput(in); err != nil {
		return nil, err
	}

	// The email must not already belong to a paid account; the check-email
	// step enforces this in the wizard but the provisioner is the last gate.
	existing, err := s.Users.GetByEmail(in.Email)
	if err != nil {
		return nil, flow.Transient("failed to check for existing account", err)
	}
	if existing != nil && existing.Paid {
		return nil, flow.Terminal("an account with this email already exists; please log in instead")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, flow.Transient("failed to hash password", err)
	}

	result := &models.TempAccountResult{}

	usr := &models.User{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		AccountType:  in.AccountType,
		Paid:         false,
	}

	if in.AccountType == models.AccountTypeOrganization {
		org := &models.Organization{
			ID:          uuid.New().String(),
			CompanyName: in.CompanyName,
			AdminUserID: usr.ID,
			AdminEmail:  in.Email,
			SeatsTotal:  in.Seats,
			Paid:        false,
		}
		if err := s.Orgs.Create(org); err != nil {
			return nil, flow.Transient("failed to create organization", err)
		}
		usr.Name = in.AdminName
		usr.Role = models.RoleCompanyAdmin
		usr.OrganizationID = org.ID
		result.TempOrganizationID = org.ID
	} else {
		usr.Name = in.Name
		usr.Role = models.RolePsychologist
	}

	if existing != nil {
		// A stale unpaid record under the same email is replaced wholesale so
		// the visitor can re-enter the flow with fresh details.
		if err := s.Users.Delete(existing.ID); err != nil {
			utils.GetLogger().Warn("failed to drop stale temp user",
				zap.String("id", existing.ID), zap.Error(err))
		}
	}

	if err := s.Users.Create(usr); err != nil {
		return nil, flow.Transient("failed to create account", err)
	}
	result.TempUserID = usr.ID

	if s.Purge != nil {
		if err := s.Purge.SchedulePurge(usr.ID, result.TempOrganizationID, s.TempAccountTTL); err != nil {
			utils.GetLogger().Error("failed to schedule temp account purge",
				zap.String("userId", usr.ID), zap.Error(err))
		}
	}

	return result, nil
}

func (s *DefaultAccountService) validateTempAccountInput(in models.TempAccountInput) error {
	if in.Email == "" {
		return flow.Validation("email is required")
	}
	if len(in.Password) < minPasswordLength {
		return flow.Validation("password must be at least %d characters", minPasswordLength)
	}

	switch in.AccountType {
	case models.AccountTypeIndividual:
		if in.Name == "" {
			return flow.Validation("name is required")
		}
	case models.AccountTypeOrganization:
		if in.AdminName == "" {
			return flow.Validation("admin name is required")
		}
		if in.CompanyName == "" {
			return flow.Validation("company name is required")
		}
		if in.Seats < s.MinOrgSeats {
			return flow.Validation("organizations require at least %d seats", s.MinOrgSeats)
		}
	default:
		return flow.Validation("unknown account type %q", in.AccountType)
	}
	return nil
}
