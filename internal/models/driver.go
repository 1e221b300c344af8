package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkEntry records one export assignment on a driver: who booked the driver,
// for which window, and at what salary.
type WorkEntry struct {
	VendorID  primitive.ObjectID `bson:"vendor_id" json:"vendor_id"`
	StartDate time.Time          `bson:"start_date" json:"start_date"`
	EndDate   time.Time          `bson:"end_date" json:"end_date"`
	Salary    float64            `bson:"salary" json:"salary"`
	Paid      bool               `bson:"paid" json:"paid"`
}

// Driver represents a delivery driver. Work and WorkDates are derived state
// maintained in lockstep with export creation and deletion; WorkDates is the
// availability index, one entry per booked calendar day, duplicates allowed.
type Driver struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Email         string             `bson:"email" json:"email"`
	Phone         string             `bson:"phone" json:"phone"`
	LicenseNo     string             `bson:"license_no" json:"license_no"`
	ExpoPushToken string             `bson:"expo_push_token,omitempty" json:"-"`
	Work          []WorkEntry        `bson:"work" json:"work"`
	WorkDates     []time.Time        `bson:"work_dates" json:"work_dates"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
