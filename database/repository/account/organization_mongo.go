package accountRepo

import (
	"errors"
	"fmt"
	"time"

	"praxis/database"
	"praxis/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoOrganizationRepo implements OrganizationRepository using MongoDB.
type MongoOrganizationRepo struct {
	coll *mongo.Collection
}

// NewMongoOrganizationRepo returns a repository bound to the organizations collection.
func NewMongoOrganizationRepo() *MongoOrganizationRepo {
	return &MongoOrganizationRepo{
		coll: database.MongoClient.Database("praxis").Collection("organizations"),
	}
}

func (r *MongoOrganizationRepo) GetByID(id string) (*models.Organization, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var org models.Organization
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch organization with id %s: %w", id, err)
	}
	return &org, nil
}

func (r *MongoOrganizationRepo) GetByAdminEmail(email string) (*models.Organization, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var org models.Organization
	err := r.coll.FindOne(ctx, bson.M{"adminEmail": email}).Decode(&org)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch organization for admin %s: %w", email, err)
	}
	return &org, nil
}

// Create inserts a new organization document.
func (r *MongoOrganizationRepo) Create(org *models.Organization) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, org)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// Update modifies an existing organization document.
func (r *MongoOrganizationRepo) Update(org *models.Organization) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	org.UpdatedAt = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": org.ID}, bson.M{"$set": org})
	if err != nil {
		return fmt.Errorf("failed to update organization with id %s: %w", org.ID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("organization with id %s not found", org.ID)
	}
	return nil
}

func (r *MongoOrganizationRepo) UpdateSetDocument(id string, updateDoc bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	updateDoc["updated_at"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": updateDoc})
	if err != nil {
		return fmt.Errorf("failed to update organization with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("organization with id %s not found", id)
	}
	return nil
}

// Delete removes an organization document by its ID.
func (r *MongoOrganizationRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete organization with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("organization with id %s not found", id)
	}
	return nil
}

// DeleteIfUnpaid removes a temp organization that never completed checkout.
func (r *MongoOrganizationRepo) DeleteIfUnpaid(id string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id, "paid": false})
	if err != nil {
		return false, fmt.Errorf("failed to purge temp organization with id %s: %w", id, err)
	}
	return result.DeletedCount > 0, nil
}
