package accountRepo

import (
	"praxis/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID; (nil, nil) when absent.
	GetByID(id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address; (nil, nil) when absent.
	GetByEmail(email string) (*models.User, error)
	// GetByIDWithProjection retrieves a user by ID with a projection.
	GetByIDWithProjection(id string, projection bson.M) (*models.User, error)
	// Create inserts a new user record.
	Create(user *models.User) error
	// Update modifies an existing user record.
	Update(user *models.User) error
	// UpdateSetDocument applies a $set update to a user record.
	UpdateSetDocument(id string, updateDoc bson.M) error
	// Delete removes a user record by its ID.
	Delete(id string) error
	// DeleteIfUnpaid removes the user only while it is still a temp record.
	DeleteIfUnpaid(id string) (bool, error)
}

// OrganizationRepository defines methods for organization data access.
type OrganizationRepository interface {
	// GetByID retrieves an organization by its unique ID; (nil, nil) when absent.
	GetByID(id string) (*models.Organization, error)
	// GetByAdminEmail retrieves the organization administered under the given
	// email; (nil, nil) when absent.
	GetByAdminEmail(email string) (*models.Organization, error)
	// Create inserts a new organization record.
	Create(org *models.Organization) error
	// Update modifies an existing organization record.
	Update(org *models.Organization) error
	// UpdateSetDocument applies a $set update to an organization record.
	UpdateSetDocument(id string, updateDoc bson.M) error
	// Delete removes an organization record by its ID.
	Delete(id string) error
	// DeleteIfUnpaid removes the organization only while it is still a temp record.
	DeleteIfUnpaid(id string) (bool, error)
}
