package models

import "time"

// Account types supported by the registration flow.
const (
	AccountTypeIndividual   = "individual"
	AccountTypeOrganization = "organization"
)

// Roles used for post-login routing and authorization.
const (
	RoleSuperAdmin   = "super_admin"
	RoleCompanyAdmin = "company_admin"
	RolePsychologist = "psychologist"
)

// User is a psychologist or organization admin account. A user with
// Paid=false is a provisional record created before checkout and is
// superseded (marked paid) once payment verification completes.
type User struct {
	ID             string `bson:"id" json:"id"`
	Name           string `bson:"name" json:"name"`
	Email          string `bson:"email" json:"email"`
	PasswordHash   string `bson:"passwordHash" json:"-"`
	Role           string `bson:"role" json:"role"`
	AccountType    string `bson:"accountType" json:"accountType"`
	OrganizationID string `bson:"organizationId,omitempty" json:"organizationId,omitempty"`
	Paid           bool   `bson:"paid" json:"paid"`

	// Subscription fields for individual accounts. Organization members
	// inherit their organization's subscription instead.
	SubscriptionStatus  string    `bson:"subscriptionStatus,omitempty" json:"subscriptionStatus,omitempty"`
	SubscriptionEndDate time.Time `bson:"subscriptionEndDate,omitempty" json:"subscriptionEndDate,omitempty"`
	CancelAtPeriodEnd   bool      `bson:"cancelAtPeriodEnd" json:"cancelAtPeriodEnd"`
	CancelReason        string    `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`

	StripeCustomerID string `bson:"stripeCustomerId,omitempty" json:"stripeCustomerId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Organization is a company account holding a per-seat subscription.
// Like User, Paid=false marks a provisional record awaiting checkout.
type Organization struct {
	ID          string `bson:"id" json:"id"`
	CompanyName string `bson:"companyName" json:"companyName"`
	AdminUserID string `bson:"adminUserId" json:"adminUserId"`
	AdminEmail  string `bson:"adminEmail" json:"adminEmail"`
	SeatsTotal  int    `bson:"seatsTotal" json:"seatsTotal"`
	Paid        bool   `bson:"paid" json:"paid"`

	SubscriptionStatus  string    `bson:"subscriptionStatus,omitempty" json:"subscriptionStatus,omitempty"`
	SubscriptionEndDate time.Time `bson:"subscriptionEndDate,omitempty" json:"subscriptionEndDate,omitempty"`
	CancelAtPeriodEnd   bool      `bson:"cancelAtPeriodEnd" json:"cancelAtPeriodEnd"`
	CancelReason        string    `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`

	StripeCustomerID string `bson:"stripeCustomerId,omitempty" json:"stripeCustomerId,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// DashboardPathForRole maps an account role to its post-login landing route.
func DashboardPathForRole(role string) string {
	switch role {
	case RoleSuperAdmin:
		return "/super/dashboard"
	case RoleCompanyAdmin:
		return "/company/dashboard"
	default:
		return "/psychologist/dashboard"
	}
}
