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

// VendorCollection defines the interface for vendor document operations.
type VendorCollection interface {
	InsertVendor(ctx context.Context, vendor models.Vendor) (primitive.ObjectID, error)
	FindVendorByID(ctx context.Context, id string) (*models.Vendor, error)
	AddDriverToVendor(ctx context.Context, vendorID string, driverID primitive.ObjectID) error
	AddVehicleToVendor(ctx context.Context, vendorID string, vehicleID primitive.ObjectID) error
}

// MongoVendorCollection implements VendorCollection for MongoDB.
type MongoVendorCollection struct {
	Collection *mongo.Collection
}

// InsertVendor inserts a vendor document with empty resource pools.
func (c *MongoVendorCollection) InsertVendor(ctx context.Context, vendor models.Vendor) (primitive.ObjectID, error) {
	vendor.CreatedAt = time.Now()
	vendor.UpdatedAt = time.Now()
	if vendor.Drivers == nil {
		vendor.Drivers = []primitive.ObjectID{}
	}
	if vendor.Vehicles == nil {
		vendor.Vehicles = []primitive.ObjectID{}
	}

	res, err := c.Collection.InsertOne(ctx, vendor)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

// FindVendorByID finds a vendor by its ID.
func (c *MongoVendorCollection) FindVendorByID(ctx context.Context, id string) (*models.Vendor, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var vendor models.Vendor
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&vendor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// AddDriverToVendor adds a driver to the vendor's pool.
func (c *MongoVendorCollection) AddDriverToVendor(ctx context.Context, vendorID string, driverID primitive.ObjectID) error {
	return c.addToPool(ctx, vendorID, bson.M{"drivers": driverID})
}

// AddVehicleToVendor adds a vehicle to the vendor's pool.
func (c *MongoVendorCollection) AddVehicleToVendor(ctx context.Context, vendorID string, vehicleID primitive.ObjectID) error {
	return c.addToPool(ctx, vendorID, bson.M{"vehicles": vehicleID})
}

func (c *MongoVendorCollection) addToPool(ctx context.Context, vendorID string, member bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(vendorID)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{
			"$addToSet": member,
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
