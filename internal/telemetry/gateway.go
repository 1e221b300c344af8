package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/freshhaul/coldroute/internal/db"
	"github.com/freshhaul/coldroute/internal/models"
)

// SeriesFilter narrows a sensor series to a time window. Date selects one
// inclusive calendar day; StartDate/EndDate select the span from the start of
// the first day through the last millisecond of the end day. All fields nil
// means no filtering.
type SeriesFilter struct {
	Date      *time.Time
	StartDate *time.Time
	EndDate   *time.Time
}

// window resolves the filter to a half-bounded [from, to] pair.
func (f SeriesFilter) window() (from, to time.Time, filtered bool) {
	if f.Date != nil {
		day := truncateToDay(*f.Date)
		return day, day.AddDate(0, 0, 1).Add(-time.Millisecond), true
	}
	if f.StartDate != nil && f.EndDate != nil {
		from = truncateToDay(*f.StartDate)
		to = truncateToDay(*f.EndDate).AddDate(0, 0, 1).Add(-time.Millisecond)
		return from, to, true
	}
	return time.Time{}, time.Time{}, false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Gateway is the read side of device telemetry. Series are resolved through
// the export's vehicle to the device whose name the vehicle stores; a broken
// link anywhere in the chain is a not-found, never a crash.
type Gateway struct {
	exports  db.ExportCollection
	vehicles db.VehicleCollection
	devices  db.DeviceCollection
}

// NewGateway creates a telemetry gateway.
func NewGateway(exports db.ExportCollection, vehicles db.VehicleCollection, devices db.DeviceCollection) *Gateway {
	return &Gateway{
		exports:  exports,
		vehicles: vehicles,
		devices:  devices,
	}
}

// SensorSeries returns the export's device sensor readings, optionally
// filtered to the window described by f. Filtering happens over the full
// embedded series; there is no separate time-series store.
func (g *Gateway) SensorSeries(ctx context.Context, exportID string, f SeriesFilter) ([]models.SensorReading, error) {
	device, err := g.resolveDevice(ctx, exportID)
	if err != nil {
		return nil, err
	}

	from, to, filtered := f.window()
	if !filtered {
		return device.DeviceData, nil
	}

	readings := make([]models.SensorReading, 0, len(device.DeviceData))
	for _, reading := range device.DeviceData {
		if reading.Timestamp.Before(from) || reading.Timestamp.After(to) {
			continue
		}
		readings = append(readings, reading)
	}
	return readings, nil
}

// LocationSeries returns the export's device GPS trail.
func (g *Gateway) LocationSeries(ctx context.Context, exportID string) ([]models.LocationPoint, error) {
	device, err := g.resolveDevice(ctx, exportID)
	if err != nil {
		return nil, err
	}
	return device.DeviceLocation, nil
}

// AppendIntermediateLocation pushes a waypoint onto the export's own
// breadcrumb trail. This trail is driver-pushed and independent of the
// device-reported GPS series read by LocationSeries.
func (g *Gateway) AppendIntermediateLocation(ctx context.Context, exportID string, point models.GeoPoint) error {
	return g.exports.PushIntermediateLocation(ctx, exportID, point)
}

// resolveDevice walks export -> vehicle -> device. The vehicle stores the
// device's name, so the last hop joins on device_name.
func (g *Gateway) resolveDevice(ctx context.Context, exportID string) (*models.Device, error) {
	export, err := g.exports.FindExportByID(ctx, exportID)
	if err != nil {
		return nil, err
	}

	vehicle, err := g.vehicles.FindVehicleByID(ctx, export.VehicleID.Hex())
	if err != nil {
		return nil, fmt.Errorf("vehicle for export %s: %w", exportID, err)
	}
	if vehicle.DeviceID == "" {
		return nil, fmt.Errorf("vehicle %s has no telemetry device: %w", vehicle.VehicleNo, models.ErrNotFound)
	}

	device, err := g.devices.FindDeviceByName(ctx, vehicle.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", vehicle.DeviceID, err)
	}
	return device, nil
}
