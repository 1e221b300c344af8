package exports

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshhaul/coldroute/internal/db"
	"github.com/freshhaul/coldroute/internal/geo"
	"github.com/freshhaul/coldroute/internal/models"
	"github.com/freshhaul/coldroute/internal/notify"
	"github.com/freshhaul/coldroute/internal/scheduling"
	"github.com/freshhaul/coldroute/internal/workhistory"
)

// routeTimeout bounds the district-geocoding call during a driver-initiated
// start. On expiry the start proceeds with an empty route list.
const routeTimeout = 8 * time.Second

// Engine drives the export lifecycle: Pending -> Started -> Completed, with
// the driver's accept/reject decision gating the Pending exit. All work-
// history and booking-key side effects flow through here and nowhere else.
type Engine struct {
	exports   db.ExportCollection
	bookings  db.BookingCollection
	vendors   db.VendorCollection
	detector  *scheduling.Detector
	ledger    *workhistory.Ledger
	districts geo.DistrictResolver
	notifier  notify.Notifier
}

// NewEngine creates a lifecycle engine. districts and notifier may be nil;
// both degrade to no-ops.
func NewEngine(
	exports db.ExportCollection,
	bookings db.BookingCollection,
	vendors db.VendorCollection,
	detector *scheduling.Detector,
	ledger *workhistory.Ledger,
	districts geo.DistrictResolver,
	notifier notify.Notifier,
) *Engine {
	return &Engine{
		exports:   exports,
		bookings:  bookings,
		vendors:   vendors,
		detector:  detector,
		ledger:    ledger,
		districts: districts,
		notifier:  notifier,
	}
}

// Create validates the request, checks for booking conflicts, reserves the
// per-day booking keys for the driver and the vehicle, inserts the export and
// records the assignment on the driver's work history.
//
// The booking keys are reserved under a unique (resource, day) index before
// the export is written, so two concurrent creations for an overlapping
// window cannot both succeed even though the conflict pre-check is not
// transactional with the insert.
func (e *Engine) Create(ctx context.Context, vendorID string, req models.CreateExportRequest) (*models.Export, error) {
	vendor, err := e.vendors.FindVendorByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if req.ItemName == "" || req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: item_name and a positive quantity are required", models.ErrValidation)
	}
	driverID, err := primitive.ObjectIDFromHex(req.DriverID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid driver_id", models.ErrValidation)
	}
	vehicleID, err := primitive.ObjectIDFromHex(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vehicle_id", models.ErrValidation)
	}
	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be RFC3339", models.ErrValidation)
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date must be RFC3339", models.ErrValidation)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start_date must not be after end_date", models.ErrValidation)
	}
	if !containsID(vendor.Drivers, driverID) {
		return nil, fmt.Errorf("%w: driver is not in the vendor's fleet", models.ErrValidation)
	}
	if !containsID(vendor.Vehicles, vehicleID) {
		return nil, fmt.Errorf("%w: vehicle is not in the vendor's fleet", models.ErrValidation)
	}

	conflict, err := e.detector.HasConflict(ctx, driverID, vehicleID, start, end)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, models.ErrConflict
	}

	exportID := primitive.NewObjectID()
	days := workhistory.ExpandDates(start, end)
	if err := e.bookings.ReserveDays(ctx, exportID, []primitive.ObjectID{driverID, vehicleID}, days); err != nil {
		return nil, err
	}

	export := models.Export{
		ID:                    exportID,
		VendorID:              vendor.ID,
		DriverID:              driverID,
		VehicleID:             vehicleID,
		ItemName:              req.ItemName,
		Quantity:              req.Quantity,
		CostPrice:             req.CostPrice,
		SalePrice:             req.SalePrice,
		StartDate:             start,
		EndDate:               end,
		StartLocation:         req.StartLocation,
		EndLocation:           req.EndLocation,
		IntermediateLocations: []models.GeoPoint{},
		Routes:                []string{},
		Status:                models.StatusPending,
		DriverResponse:        models.ResponsePending,
	}
	if _, err := e.exports.InsertExport(ctx, export); err != nil {
		if relErr := e.bookings.ReleaseDays(ctx, exportID); relErr != nil {
			log.WithError(relErr).WithField("export_id", exportID.Hex()).
				Error("Failed to release booking keys after insert failure")
		}
		return nil, err
	}

	if err := e.ledger.RecordAssignment(ctx, driverID, vendor.ID, start, end, req.Salary); err != nil {
		return nil, fmt.Errorf("export created but work history update failed: %w", err)
	}

	e.push(ctx, driverID, "New delivery assigned",
		fmt.Sprintf("%s, %s to %s", export.ItemName, start.Format("Jan 2"), end.Format("Jan 2")),
		map[string]string{"export_id": exportID.Hex(), "type": "export_assigned"})

	return &export, nil
}

// Accept records the driver's acceptance. Legal only while the driver
// response is still pending.
func (e *Engine) Accept(ctx context.Context, exportID string) (*models.Export, error) {
	matched, err := e.exports.UpdateExportGuarded(ctx, exportID,
		bson.M{"driver_response": models.ResponsePending},
		bson.M{"driver_response": models.ResponseAccepted},
	)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, e.explainMiss(ctx, exportID)
	}
	return e.exports.FindExportByID(ctx, exportID)
}

// Reject deletes the export and unwinds its work-history and booking-key side
// effects. Rejection is modeled as removal, not a stored terminal status, so a
// second reject finds nothing and fails not-found.
func (e *Engine) Reject(ctx context.Context, exportID string, reason string) error {
	export, err := e.exports.FindExportByID(ctx, exportID)
	if err != nil {
		return err
	}
	if export.DriverResponse != models.ResponsePending {
		return fmt.Errorf("%w: export was already %s", models.ErrStateGuard, export.DriverResponse)
	}

	deleted, err := e.exports.DeleteExportGuarded(ctx, exportID,
		bson.M{"driver_response": models.ResponsePending})
	if err != nil {
		return err
	}
	if !deleted {
		return e.explainMiss(ctx, exportID)
	}

	if err := e.unwind(ctx, export); err != nil {
		return err
	}

	body := "The driver rejected the delivery"
	if reason != "" {
		body = fmt.Sprintf("The driver rejected the delivery: %s", reason)
	}
	e.push(ctx, export.VendorID, "Delivery rejected", body,
		map[string]string{"export_id": export.ID.Hex(), "type": "export_rejected"})

	return nil
}

// StartByDriver moves an accepted Pending export to Started and computes the
// route districts from the start and end coordinates. Geocoding failure is
// absorbed: the export starts with an empty route list rather than blocking an
// operational delivery on a third-party outage.
func (e *Engine) StartByDriver(ctx context.Context, exportID string) (*models.Export, error) {
	export, err := e.exports.FindExportByID(ctx, exportID)
	if err != nil {
		return nil, err
	}

	routes := []string{}
	if e.districts != nil {
		routeCtx, cancel := context.WithTimeout(ctx, routeTimeout)
		resolved, err := e.districts.RouteDistricts(routeCtx, export.StartLocation, export.EndLocation)
		cancel()
		if err != nil {
			log.WithError(err).WithField("export_id", exportID).
				Warn("Route district lookup failed, starting with empty routes")
		} else {
			routes = resolved
		}
	}

	matched, err := e.exports.UpdateExportGuarded(ctx, exportID,
		startGuard(),
		bson.M{"status": models.StatusStarted, "routes": routes},
	)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, e.explainMiss(ctx, exportID)
	}
	return e.exports.FindExportByID(ctx, exportID)
}

// StartByVendor moves an accepted Pending export to Started without route
// computation. The asymmetry with StartByDriver is deliberate: only the
// driver-side start carries coordinates worth geocoding.
func (e *Engine) StartByVendor(ctx context.Context, exportID string) (*models.Export, error) {
	matched, err := e.exports.UpdateExportGuarded(ctx, exportID,
		startGuard(),
		bson.M{"status": models.StatusStarted},
	)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, e.explainMiss(ctx, exportID)
	}
	return e.exports.FindExportByID(ctx, exportID)
}

// Complete closes a Started export. Completed is terminal.
func (e *Engine) Complete(ctx context.Context, exportID string) (*models.Export, error) {
	matched, err := e.exports.UpdateExportGuarded(ctx, exportID,
		bson.M{"status": models.StatusStarted},
		bson.M{"status": models.StatusCompleted},
	)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, e.explainMiss(ctx, exportID)
	}
	return e.exports.FindExportByID(ctx, exportID)
}

// Delete removes a Pending export and unwinds its side effects. Exports whose
// status has left Pending are never hard-deleted.
func (e *Engine) Delete(ctx context.Context, exportID string) error {
	export, err := e.exports.FindExportByID(ctx, exportID)
	if err != nil {
		return err
	}
	if export.Status != models.StatusPending {
		return fmt.Errorf("%w: only Pending exports can be deleted", models.ErrStateGuard)
	}

	deleted, err := e.exports.DeleteExportGuarded(ctx, exportID,
		bson.M{"status": models.StatusPending})
	if err != nil {
		return err
	}
	if !deleted {
		return e.explainMiss(ctx, exportID)
	}

	return e.unwind(ctx, export)
}

// Get returns a single export.
func (e *Engine) Get(ctx context.Context, exportID string) (*models.Export, error) {
	return e.exports.FindExportByID(ctx, exportID)
}

// ListByVendor returns a vendor's exports.
func (e *Engine) ListByVendor(ctx context.Context, vendorID string) ([]models.Export, error) {
	objectID, err := primitive.ObjectIDFromHex(vendorID)
	if err != nil {
		return nil, models.ErrNotFound
	}
	return e.exports.FindExportsByVendor(ctx, objectID)
}

// ListByDriver returns a driver's exports.
func (e *Engine) ListByDriver(ctx context.Context, driverID string) ([]models.Export, error) {
	objectID, err := primitive.ObjectIDFromHex(driverID)
	if err != nil {
		return nil, models.ErrNotFound
	}
	return e.exports.FindExportsByDriver(ctx, objectID)
}

// AvailableResources returns the vendor's drivers and vehicles free of
// overlapping bookings in [start, end].
func (e *Engine) AvailableResources(ctx context.Context, vendorID string, start, end time.Time) (*models.Availability, error) {
	vendor, err := e.vendors.FindVendorByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	return e.detector.AvailableResources(ctx, vendor, start, end)
}

// unwind reverses the create-time side effects of an export: the driver's
// work entry and booked dates, and the booking keys.
func (e *Engine) unwind(ctx context.Context, export *models.Export) error {
	if err := e.ledger.RemoveAssignment(ctx, export.DriverID, export.VendorID, export.StartDate, export.EndDate); err != nil {
		return fmt.Errorf("export removed but work history update failed: %w", err)
	}
	if err := e.bookings.ReleaseDays(ctx, export.ID); err != nil {
		return fmt.Errorf("export removed but booking keys not released: %w", err)
	}
	return nil
}

// explainMiss turns a guarded-update miss into the right error: not-found if
// the export no longer exists, state-guard otherwise.
func (e *Engine) explainMiss(ctx context.Context, exportID string) error {
	export, err := e.exports.FindExportByID(ctx, exportID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: export is %s with driver response %s",
		models.ErrStateGuard, export.Status, export.DriverResponse)
}

func (e *Engine) push(ctx context.Context, profileID primitive.ObjectID, title, body string, data map[string]string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Push(ctx, profileID, title, body, data); err != nil {
		log.WithError(err).WithField("profile_id", profileID.Hex()).
			Warn("Push notification failed")
	}
}

func startGuard() bson.M {
	return bson.M{
		"status":          models.StatusPending,
		"driver_response": models.ResponseAccepted,
	}
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
