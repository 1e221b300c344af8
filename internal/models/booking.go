package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking is a per-day reservation key for a driver or vehicle. A unique
// index over (resource_id, day) guarantees that no two exports can hold the
// same resource on the same calendar day.
type Booking struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ResourceID primitive.ObjectID `bson:"resource_id" json:"resource_id"`
	Day        time.Time          `bson:"day" json:"day"`
	ExportID   primitive.ObjectID `bson:"export_id" json:"export_id"`
}
