package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vendor owns the pools of drivers and vehicles from which exports are
// assembled. Each export pins exactly one driver and one vehicle from these
// pools for its lifetime.
type Vendor struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Email         string               `bson:"email" json:"email"`
	Phone         string               `bson:"phone" json:"phone"`
	ExpoPushToken string               `bson:"expo_push_token,omitempty" json:"-"`
	Drivers       []primitive.ObjectID `bson:"drivers" json:"drivers"`
	Vehicles      []primitive.ObjectID `bson:"vehicles" json:"vehicles"`
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}
