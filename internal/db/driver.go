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

// DriverCollection defines the interface for driver document operations,
// including the work-history mutations performed by the ledger.
type DriverCollection interface {
	InsertDriver(ctx context.Context, driver models.Driver) (primitive.ObjectID, error)
	FindDriverByID(ctx context.Context, id string) (*models.Driver, error)
	FindDriversByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Driver, error)
	PushWork(ctx context.Context, driverID primitive.ObjectID, entry models.WorkEntry, dates []time.Time) error
	PullWork(ctx context.Context, driverID primitive.ObjectID, entry models.WorkEntry, from, to time.Time) error
}

// MongoDriverCollection implements DriverCollection for MongoDB.
type MongoDriverCollection struct {
	Collection *mongo.Collection
}

// InsertDriver inserts a driver document.
func (c *MongoDriverCollection) InsertDriver(ctx context.Context, driver models.Driver) (primitive.ObjectID, error) {
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = time.Now()
	if driver.Work == nil {
		driver.Work = []models.WorkEntry{}
	}
	if driver.WorkDates == nil {
		driver.WorkDates = []time.Time{}
	}

	res, err := c.Collection.InsertOne(ctx, driver)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

// FindDriverByID finds a driver by its ID.
func (c *MongoDriverCollection) FindDriverByID(ctx context.Context, id string) (*models.Driver, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var driver models.Driver
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&driver)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// FindDriversByIDs returns the drivers whose ids appear in ids.
func (c *MongoDriverCollection) FindDriversByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Driver, error) {
	if len(ids) == 0 {
		return []models.Driver{}, nil
	}

	cursor, err := c.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drivers []models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// PushWork appends a work entry and the expanded booked dates to the driver in
// a single update.
func (c *MongoDriverCollection) PushWork(ctx context.Context, driverID primitive.ObjectID, entry models.WorkEntry, dates []time.Time) error {
	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": driverID},
		bson.M{
			"$push": bson.M{
				"work":       entry,
				"work_dates": bson.M{"$each": dates},
			},
			"$set": bson.M{"updated_at": time.Now()},
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

// PullWork removes the work entry matching entry's vendor and window, and
// every booked date falling inside [from, to]. Dates contributed by other
// exports outside the window are left untouched.
func (c *MongoDriverCollection) PullWork(ctx context.Context, driverID primitive.ObjectID, entry models.WorkEntry, from, to time.Time) error {
	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": driverID},
		bson.M{
			"$pull": bson.M{
				"work": bson.M{
					"vendor_id":  entry.VendorID,
					"start_date": entry.StartDate,
					"end_date":   entry.EndDate,
				},
				"work_dates": bson.M{"$gte": from, "$lte": to},
			},
			"$set": bson.M{"updated_at": time.Now()},
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
