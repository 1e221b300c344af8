package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshhaul/coldroute/internal/db"
	"github.com/freshhaul/coldroute/internal/models"
)

// RegistryHandler manages the resource registry: vendor fleets, vehicles and
// their telemetry devices.
type RegistryHandler struct {
	vendors  db.VendorCollection
	drivers  db.DriverCollection
	vehicles db.VehicleCollection
	devices  db.DeviceCollection
}

// NewRegistryHandler creates a new registry handler.
func NewRegistryHandler(vendors db.VendorCollection, drivers db.DriverCollection, vehicles db.VehicleCollection, devices db.DeviceCollection) *RegistryHandler {
	return &RegistryHandler{
		vendors:  vendors,
		drivers:  drivers,
		vehicles: vehicles,
		devices:  devices,
	}
}

// AddVehicle handles POST /vehicle/add/{vendorId}: registers a vehicle and
// adds it to the vendor's pool.
func (h *RegistryHandler) AddVehicle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VehicleNo  string  `json:"vehicle_no"`
		Model      string  `json:"model"`
		CapacityKg float64 `json:"capacity_kg"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.VehicleNo == "" {
		writeError(w, fmt.Errorf("%w: vehicle_no is required", models.ErrValidation))
		return
	}

	vendorID := chi.URLParam(r, "vendorId")
	if _, err := h.vendors.FindVendorByID(r.Context(), vendorID); err != nil {
		writeError(w, err)
		return
	}

	vehicle := models.Vehicle{
		VehicleNo:  req.VehicleNo,
		Model:      req.Model,
		CapacityKg: req.CapacityKg,
	}
	id, err := h.vehicles.InsertVehicle(r.Context(), vehicle)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.vendors.AddVehicleToVendor(r.Context(), vendorID, id); err != nil {
		writeError(w, err)
		return
	}

	vehicle.ID = id
	writeJSON(w, http.StatusCreated, vehicle)
}

// AddDevice handles POST /device/add: registers a telemetry device.
func (h *RegistryHandler) AddDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceName string `json:"device_name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.DeviceName == "" {
		writeError(w, fmt.Errorf("%w: device_name is required", models.ErrValidation))
		return
	}

	device := models.Device{DeviceName: req.DeviceName}
	id, err := h.devices.InsertDevice(r.Context(), device)
	if err != nil {
		writeError(w, err)
		return
	}

	device.ID = id
	writeJSON(w, http.StatusCreated, device)
}

// AssignDevice handles PUT /device/assign/{vehicleId}: binds a device to a
// vehicle by name. A device binds once; the vehicle stores the device name.
func (h *RegistryHandler) AssignDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DeviceName string `json:"device_name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.DeviceName == "" {
		writeError(w, fmt.Errorf("%w: device_name is required", models.ErrValidation))
		return
	}

	vehicleID := chi.URLParam(r, "vehicleId")
	if _, err := h.vehicles.FindVehicleByID(r.Context(), vehicleID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.devices.MarkDeviceAssigned(r.Context(), req.DeviceName); err != nil {
		writeError(w, err)
		return
	}
	if err := h.vehicles.SetVehicleDevice(r.Context(), vehicleID, req.DeviceName); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Device assigned"})
}

// AddDriverToFleet handles POST /vendor/driver/add/{vendorId}: links an
// existing driver into the vendor's pool.
func (h *RegistryHandler) AddDriverToFleet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DriverID string `json:"driver_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	driver, err := h.drivers.FindDriverByID(r.Context(), req.DriverID)
	if err != nil {
		writeError(w, err)
		return
	}

	driverID, _ := primitive.ObjectIDFromHex(req.DriverID)
	if err := h.vendors.AddDriverToVendor(r.Context(), chi.URLParam(r, "vendorId"), driverID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Driver " + driver.Name + " added to fleet"})
}
