package accountRepo

import (
	"fmt"
	"sync"
	"time"

	"praxis/models"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryUserRepo is an in-process UserRepository used by tests and local
// development. UpdateSetDocument supports the field names the services
// actually write.
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]models.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]models.User)}
}

func (r *MemoryUserRepo) GetByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	usr, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	out := usr
	return &out, nil
}

func (r *MemoryUserRepo) GetByIDWithProjection(id string, _ bson.M) (*models.User, error) {
	return r.GetByID(id)
}

func (r *MemoryUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, usr := range r.users {
		if usr.Email == email {
			out := usr
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user with id %s not found", user.ID)
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepo) UpdateSetDocument(id string, updateDoc bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	usr, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user with id %s not found", id)
	}
	applyUserFields(&usr, updateDoc)
	usr.UpdatedAt = time.Now()
	r.users[id] = usr
	return nil
}

func (r *MemoryUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user with id %s not found", id)
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepo) DeleteIfUnpaid(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	usr, ok := r.users[id]
	if !ok || usr.Paid {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

func applyUserFields(usr *models.User, doc bson.M) {
	for field, value := range doc {
		switch field {
		case "paid":
			usr.Paid, _ = value.(bool)
		case "role":
			usr.Role, _ = value.(string)
		case "subscriptionStatus":
			usr.SubscriptionStatus, _ = value.(string)
		case "subscriptionEndDate":
			usr.SubscriptionEndDate, _ = value.(time.Time)
		case "cancelAtPeriodEnd":
			usr.CancelAtPeriodEnd, _ = value.(bool)
		case "cancelReason":
			usr.CancelReason, _ = value.(string)
		case "stripeCustomerId":
			usr.StripeCustomerID, _ = value.(string)
		}
	}
}

// MemoryOrganizationRepo is the in-process OrganizationRepository counterpart.
type MemoryOrganizationRepo struct {
	mu   sync.Mutex
	orgs map[string]models.Organization
}

func NewMemoryOrganizationRepo() *MemoryOrganizationRepo {
	return &MemoryOrganizationRepo{orgs: make(map[string]models.Organization)}
}

func (r *MemoryOrganizationRepo) GetByID(id string) (*models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[id]
	if !ok {
		return nil, nil
	}
	out := org
	return &out, nil
}

func (r *MemoryOrganizationRepo) GetByAdminEmail(email string) (*models.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, org := range r.orgs {
		if org.AdminEmail == email {
			out := org
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryOrganizationRepo) Create(org *models.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now
	r.orgs[org.ID] = *org
	return nil
}

func (r *MemoryOrganizationRepo) Update(org *models.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[org.ID]; !ok {
		return fmt.Errorf("organization with id %s not found", org.ID)
	}
	org.UpdatedAt = time.Now()
	r.orgs[org.ID] = *org
	return nil
}

func (r *MemoryOrganizationRepo) UpdateSetDocument(id string, updateDoc bson.M) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[id]
	if !ok {
		return fmt.Errorf("organization with id %s not found", id)
	}
	applyOrgFields(&org, updateDoc)
	org.UpdatedAt = time.Now()
	r.orgs[id] = org
	return nil
}

func (r *MemoryOrganizationRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[id]; !ok {
		return fmt.Errorf("organization with id %s not found", id)
	}
	delete(r.orgs, id)
	return nil
}

func (r *MemoryOrganizationRepo) DeleteIfUnpaid(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	org, ok := r.orgs[id]
	if !ok || org.Paid {
		return false, nil
	}
	delete(r.orgs, id)
	return true, nil
}

func applyOrgFields(org *models.Organization, doc bson.M) {
	for field, value := range doc {
		switch field {
		case "paid":
			org.Paid, _ = value.(bool)
		case "seatsTotal":
			if v, ok := value.(int); ok {
				org.SeatsTotal = v
			}
		case "subscriptionStatus":
			org.SubscriptionStatus, _ = value.(string)
		case "subscriptionEndDate":
			org.SubscriptionEndDate, _ = value.(time.Time)
		case "cancelAtPeriodEnd":
			org.CancelAtPeriodEnd, _ = value.(bool)
		case "cancelReason":
			org.CancelReason, _ = value.(string)
		case "stripeCustomerId":
			org.StripeCustomerID, _ = value.(string)
		}
	}
}
