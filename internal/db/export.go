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

// ExportCollection defines the interface for export document operations.
type ExportCollection interface {
	InsertExport(ctx context.Context, export models.Export) (primitive.ObjectID, error)
	FindExportByID(ctx context.Context, id string) (*models.Export, error)
	FindExportsByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.Export, error)
	FindExportsByDriver(ctx context.Context, driverID primitive.ObjectID) ([]models.Export, error)
	FindOverlapping(ctx context.Context, start, end time.Time, driverID, vehicleID *primitive.ObjectID) ([]models.Export, error)
	UpdateExportGuarded(ctx context.Context, id string, guard bson.M, set bson.M) (bool, error)
	DeleteExportGuarded(ctx context.Context, id string, guard bson.M) (bool, error)
	PushIntermediateLocation(ctx context.Context, id string, point models.GeoPoint) error
}

// MongoExportCollection implements ExportCollection for MongoDB.
type MongoExportCollection struct {
	Collection *mongo.Collection
}

// InsertExport inserts an export document.
func (c *MongoExportCollection) InsertExport(ctx context.Context, export models.Export) (primitive.ObjectID, error) {
	export.CreatedAt = time.Now()
	export.UpdatedAt = time.Now()

	res, err := c.Collection.InsertOne(ctx, export)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("unexpected inserted id type")
	}
	return id, nil
}

// FindExportByID finds an export by its ID.
func (c *MongoExportCollection) FindExportByID(ctx context.Context, id string) (*models.Export, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}

	var export models.Export
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&export)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &export, nil
}

// FindExportsByVendor lists a vendor's exports, newest window first.
func (c *MongoExportCollection) FindExportsByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.Export, error) {
	return c.findAll(ctx, bson.M{"vendor_id": vendorID})
}

// FindExportsByDriver lists a driver's exports, newest window first.
func (c *MongoExportCollection) FindExportsByDriver(ctx context.Context, driverID primitive.ObjectID) ([]models.Export, error) {
	return c.findAll(ctx, bson.M{"driver_id": driverID})
}

// FindOverlapping returns exports whose [start_date, end_date] window overlaps
// [start, end] with inclusive boundaries. When driverID or vehicleID is set,
// only exports sharing one of those resources are returned; with both nil the
// full overlapping set comes back. Status is deliberately not part of the
// filter: completed exports still count as occupancy for their stored window.
func (c *MongoExportCollection) FindOverlapping(ctx context.Context, start, end time.Time, driverID, vehicleID *primitive.ObjectID) ([]models.Export, error) {
	filter := bson.M{
		"start_date": bson.M{"$lte": end},
		"end_date":   bson.M{"$gte": start},
	}

	var resources []bson.M
	if driverID != nil {
		resources = append(resources, bson.M{"driver_id": *driverID})
	}
	if vehicleID != nil {
		resources = append(resources, bson.M{"vehicle_id": *vehicleID})
	}
	if len(resources) > 0 {
		filter["$or"] = resources
	}

	return c.findAll(ctx, filter)
}

// UpdateExportGuarded applies set to the export matching id plus the guard
// filter. It reports whether a document matched; callers disambiguate a miss
// into not-found vs guard-failed by re-fetching.
func (c *MongoExportCollection) UpdateExportGuarded(ctx context.Context, id string, guard bson.M, set bson.M) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, models.ErrNotFound
	}

	filter := bson.M{"_id": objectID}
	for k, v := range guard {
		filter[k] = v
	}
	set["updated_at"] = time.Now()

	res, err := c.Collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// DeleteExportGuarded removes the export matching id plus the guard filter and
// reports whether a document was deleted.
func (c *MongoExportCollection) DeleteExportGuarded(ctx context.Context, id string, guard bson.M) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, models.ErrNotFound
	}

	filter := bson.M{"_id": objectID}
	for k, v := range guard {
		filter[k] = v
	}

	res, err := c.Collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// PushIntermediateLocation appends a waypoint to the export's own breadcrumb
// trail. This list is independent of the device's GPS series.
func (c *MongoExportCollection) PushIntermediateLocation(ctx context.Context, id string, point models.GeoPoint) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}

	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$push": bson.M{"intermediate_locations": point}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (c *MongoExportCollection) findAll(ctx context.Context, filter bson.M) ([]models.Export, error) {
	cursor, err := c.Collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exports []models.Export
	if err := cursor.All(ctx, &exports); err != nil {
		return nil, err
	}
	return exports, nil
}
