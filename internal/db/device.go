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

// DeviceCollection defines the interface for telemetry device operations.
// Series appends come from the MQTT ingestor; reads go through the gateway.
type DeviceCollection interface {
	InsertDevice(ctx context.Context, device models.Device) (primitive.ObjectID, error)
	FindDeviceByName(ctx context.Context, name string) (*models.Device, error)
	MarkDeviceAssigned(ctx context.Context, name string) error
	AppendDeviceLocation(ctx context.Context, name string, point models.LocationPoint) error
	AppendDeviceReading(ctx context.Context, name string, reading models.SensorReading) error
}

// MongoDeviceCollection implements DeviceCollection for MongoDB.
type MongoDeviceCollection struct {
	Collection *mongo.Collection
}

// InsertDevice inserts a device document with empty series.
func (c *MongoDeviceCollection) InsertDevice(ctx context.Context, device models.Device) (primitive.ObjectID, error) {
	device.CreatedAt = time.Now()
	if device.DeviceLocation == nil {
		device.DeviceLocation = []models.LocationPoint{}
	}
	if device.DeviceData == nil {
		device.DeviceData = []models.SensorReading{}
	}

	res, err := c.Collection.InsertOne(ctx, device)
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

// FindDeviceByName finds a device by its name. Vehicles store the device name,
// so this is the join used by the telemetry resolution chain.
func (c *MongoDeviceCollection) FindDeviceByName(ctx context.Context, name string) (*models.Device, error) {
	var device models.Device
	err := c.Collection.FindOne(ctx, bson.M{"device_name": name}).Decode(&device)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

// MarkDeviceAssigned flips is_assigned on an unassigned device. The flag
// toggles exactly once; binding an already assigned device fails.
func (c *MongoDeviceCollection) MarkDeviceAssigned(ctx context.Context, name string) error {
	res, err := c.Collection.UpdateOne(ctx,
		bson.M{"device_name": name, "is_assigned": false},
		bson.M{"$set": bson.M{"is_assigned": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, ferr := c.FindDeviceByName(ctx, name); ferr != nil {
			return ferr
		}
		return models.ErrConflict
	}
	return nil
}

// AppendDeviceLocation appends a point to the device's GPS trail.
func (c *MongoDeviceCollection) AppendDeviceLocation(ctx context.Context, name string, point models.LocationPoint) error {
	return c.appendSeries(ctx, name, bson.M{"device_location": point})
}

// AppendDeviceReading appends a reading to the device's sensor series.
func (c *MongoDeviceCollection) AppendDeviceReading(ctx context.Context, name string, reading models.SensorReading) error {
	return c.appendSeries(ctx, name, bson.M{"device_data": reading})
}

func (c *MongoDeviceCollection) appendSeries(ctx context.Context, name string, push bson.M) error {
	res, err := c.Collection.UpdateOne(ctx, bson.M{"device_name": name}, bson.M{"$push": push})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
