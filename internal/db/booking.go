package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshhaul/coldroute/internal/models"
)

// BookingCollection defines the reservation keys that make export creation
// race-free. Every export holds one (resource_id, day) key per booked calendar
// day for its driver and its vehicle; the unique index on that pair turns two
// concurrent creations for the same resource into exactly one winner.
type BookingCollection interface {
	ReserveDays(ctx context.Context, exportID primitive.ObjectID, resourceIDs []primitive.ObjectID, days []time.Time) error
	ReleaseDays(ctx context.Context, exportID primitive.ObjectID) error
}

// MongoBookingCollection implements BookingCollection for MongoDB.
type MongoBookingCollection struct {
	Collection *mongo.Collection
}

// ReserveDays inserts one booking key per resource per day. A duplicate key
// means another export already holds one of the days; everything inserted for
// this export is rolled back and ErrConflict is returned.
func (c *MongoBookingCollection) ReserveDays(ctx context.Context, exportID primitive.ObjectID, resourceIDs []primitive.ObjectID, days []time.Time) error {
	docs := make([]interface{}, 0, len(resourceIDs)*len(days))
	for _, rid := range resourceIDs {
		for _, day := range days {
			docs = append(docs, models.Booking{
				ResourceID: rid,
				Day:        day,
				ExportID:   exportID,
			})
		}
	}
	if len(docs) == 0 {
		return nil
	}

	_, err := c.Collection.InsertMany(ctx, docs)
	if err != nil {
		// Roll back whatever landed before the collision.
		_, _ = c.Collection.DeleteMany(ctx, bson.M{"export_id": exportID})
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrConflict
		}
		return err
	}
	return nil
}

// ReleaseDays frees every booking key held by an export.
func (c *MongoBookingCollection) ReleaseDays(ctx context.Context, exportID primitive.ObjectID) error {
	_, err := c.Collection.DeleteMany(ctx, bson.M{"export_id": exportID})
	return err
}
