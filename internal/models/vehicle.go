package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle represents a delivery vehicle. DeviceID holds the *name* of the
// telemetry device mounted on it, not the device document's own id; telemetry
// lookups join on device_name.
type Vehicle struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleNo  string             `bson:"vehicle_no" json:"vehicle_no"`
	Model      string             `bson:"model" json:"model"`
	CapacityKg float64            `bson:"capacity_kg" json:"capacity_kg"`
	DeviceID   string             `bson:"device_id,omitempty" json:"device_id,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
