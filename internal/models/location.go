package models

import "time"

// GeoPoint represents a geographical coordinate pair.
type GeoPoint struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// LocationPoint is a single entry in a device's GPS trail.
type LocationPoint struct {
	Latitude  float64   `bson:"latitude" json:"latitude"`
	Longitude float64   `bson:"longitude" json:"longitude"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// SensorReading is a single entry in a device's cold-chain sensor series.
type SensorReading struct {
	Humidity    float64   `bson:"humidity" json:"humidity"`
	Temperature float64   `bson:"temperature" json:"temperature"`
	Ethylene    float64   `bson:"ethylene" json:"ethylene"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}
