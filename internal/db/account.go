package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshhaul/coldroute/internal/models"
)

// AccountCollection defines the interface for login-account operations. The
// role tag on the account makes push-token lookup a single query instead of
// probing the vendor, driver and customer collections in turn.
type AccountCollection interface {
	InsertAccount(ctx context.Context, account models.Account) (primitive.ObjectID, error)
	FindAccountByID(ctx context.Context, id string) (*models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	FindAccountByProfileID(ctx context.Context, profileID primitive.ObjectID) (*models.Account, error)
	UpdateAccountPassword(ctx context.Context, id string, passwordHash string) error
}

// MongoAccountCollection implements AccountCollection for MongoDB.
type MongoAccountCollection struct {
	Collection *mongo.Collection
}

// InsertAccount inserts an account document.
func (c *MongoAccountCollection) InsertAccount(ctx context.Context, account models.Account) (primitive.ObjectID, error) {
	account.CreatedAt = time.Now()
	account.UpdatedAt = time.Now()

	res, err := c.Collection.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, models.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

// FindAccountByID finds an account by its ID.
func (c *MongoAccountCollection) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	return c.findOne(ctx, bson.M{"_id": objectID})
}

// FindAccountByEmail finds an account by its email.
func (c *MongoAccountCollection) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return c.findOne(ctx, bson.M{"email": email})
}

// FindAccountByProfileID finds the account attached to a vendor, driver or
// customer profile document.
func (c *MongoAccountCollection) FindAccountByProfileID(ctx context.Context, profileID primitive.ObjectID) (*models.Account, error) {
	return c.findOne(ctx, bson.M{"profile_id": profileID})
}

// UpdateAccountPassword replaces the stored password hash.
func (c *MongoAccountCollection) UpdateAccountPassword(ctx context.Context, id string, passwordHash string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (c *MongoAccountCollection) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var account models.Account
	err := c.Collection.FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}
