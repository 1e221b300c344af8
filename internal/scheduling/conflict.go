package scheduling

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshhaul/coldroute/internal/db"
	"github.com/freshhaul/coldroute/internal/models"
)

// Overlaps reports whether [s1, e1] and [s2, e2] overlap. Boundaries are
// inclusive: windows that merely touch at an endpoint count as overlapping.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !e1.Before(s2)
}

// Detector answers booking-conflict questions over the export collection.
// Export status is never consulted: a completed export still occupies its
// stored window, which guards against rebooking a vehicle that is mid-trip
// per its dates even if it was marked complete late.
type Detector struct {
	exports  db.ExportCollection
	drivers  db.DriverCollection
	vehicles db.VehicleCollection
}

// NewDetector creates a conflict detector.
func NewDetector(exports db.ExportCollection, drivers db.DriverCollection, vehicles db.VehicleCollection) *Detector {
	return &Detector{
		exports:  exports,
		drivers:  drivers,
		vehicles: vehicles,
	}
}

// HasConflict reports whether any existing export overlaps [start, end] and
// shares the proposed driver or the proposed vehicle. Sharing either resource
// is sufficient to block.
func (d *Detector) HasConflict(ctx context.Context, driverID, vehicleID primitive.ObjectID, start, end time.Time) (bool, error) {
	overlapping, err := d.exports.FindOverlapping(ctx, start, end, &driverID, &vehicleID)
	if err != nil {
		return false, err
	}
	return len(overlapping) > 0, nil
}

// AvailableResources filters the vendor's driver and vehicle pools down to the
// resources free of any overlapping export in [start, end].
func (d *Detector) AvailableResources(ctx context.Context, vendor *models.Vendor, start, end time.Time) (*models.Availability, error) {
	overlapping, err := d.exports.FindOverlapping(ctx, start, end, nil, nil)
	if err != nil {
		return nil, err
	}

	busy := make(map[primitive.ObjectID]struct{}, len(overlapping)*2)
	for _, export := range overlapping {
		busy[export.DriverID] = struct{}{}
		busy[export.VehicleID] = struct{}{}
	}

	freeDriverIDs := make([]primitive.ObjectID, 0, len(vendor.Drivers))
	for _, id := range vendor.Drivers {
		if _, ok := busy[id]; !ok {
			freeDriverIDs = append(freeDriverIDs, id)
		}
	}
	freeVehicleIDs := make([]primitive.ObjectID, 0, len(vendor.Vehicles))
	for _, id := range vendor.Vehicles {
		if _, ok := busy[id]; !ok {
			freeVehicleIDs = append(freeVehicleIDs, id)
		}
	}

	drivers, err := d.drivers.FindDriversByIDs(ctx, freeDriverIDs)
	if err != nil {
		return nil, err
	}
	vehicles, err := d.vehicles.FindVehiclesByIDs(ctx, freeVehicleIDs)
	if err != nil {
		return nil, err
	}

	return &models.Availability{Drivers: drivers, Vehicles: vehicles}, nil
}
