package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Device is a vehicle-mounted telemetry unit. It carries two independent
// append-only series: a GPS trail and a cold-chain sensor series. IsAssigned
// flips exactly once, when the device is bound to a vehicle.
type Device struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DeviceName     string             `bson:"device_name" json:"device_name"`
	IsAssigned     bool               `bson:"is_assigned" json:"is_assigned"`
	DeviceLocation []LocationPoint    `bson:"device_location" json:"device_location"`
	DeviceData     []SensorReading    `bson:"device_data" json:"device_data"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
