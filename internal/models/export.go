package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExportStatus is the execution state of a delivery job. It only moves
// forward: Pending -> Started -> Completed.
type ExportStatus string

const (
	StatusPending   ExportStatus = "Pending"
	StatusStarted   ExportStatus = "Started"
	StatusCompleted ExportStatus = "Completed"
)

// DriverResponse is the assigned driver's decision on an export, independent
// of the export's execution status.
type DriverResponse string

const (
	ResponsePending  DriverResponse = "pending"
	ResponseAccepted DriverResponse = "accepted"
	ResponseRejected DriverResponse = "rejected"
)

// Export is a scheduled delivery job binding one driver, one vehicle, a time
// window and a cargo item. Exports are hard-deleted only while Pending.
type Export struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VendorID              primitive.ObjectID `bson:"vendor_id" json:"vendor_id"`
	DriverID              primitive.ObjectID `bson:"driver_id" json:"driver_id"`
	VehicleID             primitive.ObjectID `bson:"vehicle_id" json:"vehicle_id"`
	ItemName              string             `bson:"item_name" json:"item_name"`
	Quantity              float64            `bson:"quantity" json:"quantity"`
	CostPrice             float64            `bson:"cost_price" json:"cost_price"`
	SalePrice             float64            `bson:"sale_price" json:"sale_price"`
	StartDate             time.Time          `bson:"start_date" json:"start_date"`
	EndDate               time.Time          `bson:"end_date" json:"end_date"`
	StartLocation         GeoPoint           `bson:"start_location" json:"start_location"`
	EndLocation           GeoPoint           `bson:"end_location" json:"end_location"`
	IntermediateLocations []GeoPoint         `bson:"intermediate_locations" json:"intermediate_locations"`
	Routes                []string           `bson:"routes" json:"routes"`
	Status                ExportStatus       `bson:"status" json:"status"`
	DriverResponse        DriverResponse     `bson:"driver_response" json:"driver_response"`
	CreatedAt             time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateExportRequest is the payload for creating an export.
type CreateExportRequest struct {
	DriverID      string   `json:"driver_id"`
	VehicleID     string   `json:"vehicle_id"`
	ItemName      string   `json:"item_name"`
	Quantity      float64  `json:"quantity"`
	CostPrice     float64  `json:"cost_price"`
	SalePrice     float64  `json:"sale_price"`
	Salary        float64  `json:"salary"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	StartLocation GeoPoint `json:"start_location"`
	EndLocation   GeoPoint `json:"end_location"`
}

// RejectExportRequest carries the driver's reason for turning an export down.
type RejectExportRequest struct {
	Reason string `json:"reason"`
}

// Availability lists a vendor's drivers and vehicles free of overlapping
// bookings for a proposed window.
type Availability struct {
	Drivers  []Driver  `json:"drivers"`
	Vehicles []Vehicle `json:"vehicles"`
}
