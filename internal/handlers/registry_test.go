package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshhaul/coldroute/internal/models"
)

func TestRegistryHandler_AddVehicle(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		vendors := new(MockVendorCollection)
		vehicles := new(MockVehicleCollection)
		handler := NewRegistryHandler(vendors, new(MockDriverCollection), vehicles, new(MockDeviceCollection))

		vendorID := primitive.NewObjectID()
		vehicleID := primitive.NewObjectID()
		vendors.On("FindVendorByID", mock.Anything, vendorID.Hex()).Return(&models.Vendor{ID: vendorID}, nil)
		vehicles.On("InsertVehicle", mock.Anything, mock.AnythingOfType("models.Vehicle")).Return(vehicleID, nil)
		vendors.On("AddVehicleToVendor", mock.Anything, vendorID.Hex(), vehicleID).Return(nil)

		body, _ := json.Marshal(map[string]interface{}{"vehicle_no": "CAB-1234", "model": "Isuzu Elf", "capacity_kg": 2000})
		req := httptest.NewRequest("POST", "/api/vehicle/add/"+vendorID.Hex(), bytes.NewBuffer(body))
		req = withURLParam(req, "vendorId", vendorID.Hex())
		w := httptest.NewRecorder()

		handler.AddVehicle(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		vendors.AssertExpectations(t)
		vehicles.AssertExpectations(t)
	})

	t.Run("duplicate vehicle number maps to 409", func(t *testing.T) {
		vendors := new(MockVendorCollection)
		vehicles := new(MockVehicleCollection)
		handler := NewRegistryHandler(vendors, new(MockDriverCollection), vehicles, new(MockDeviceCollection))

		vendorID := primitive.NewObjectID()
		vendors.On("FindVendorByID", mock.Anything, vendorID.Hex()).Return(&models.Vendor{ID: vendorID}, nil)
		vehicles.On("InsertVehicle", mock.Anything, mock.AnythingOfType("models.Vehicle")).Return(primitive.NilObjectID, models.ErrConflict)

		body, _ := json.Marshal(map[string]interface{}{"vehicle_no": "CAB-1234"})
		req := httptest.NewRequest("POST", "/api/vehicle/add/"+vendorID.Hex(), bytes.NewBuffer(body))
		req = withURLParam(req, "vendorId", vendorID.Hex())
		w := httptest.NewRecorder()

		handler.AddVehicle(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing vehicle number is rejected", func(t *testing.T) {
		handler := NewRegistryHandler(new(MockVendorCollection), new(MockDriverCollection), new(MockVehicleCollection), new(MockDeviceCollection))

		body, _ := json.Marshal(map[string]interface{}{"model": "Isuzu Elf"})
		req := httptest.NewRequest("POST", "/api/vehicle/add/abc", bytes.NewBuffer(body))
		req = withURLParam(req, "vendorId", "abc")
		w := httptest.NewRecorder()

		handler.AddVehicle(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRegistryHandler_AssignDevice(t *testing.T) {
	t.Run("successful assignment", func(t *testing.T) {
		vehicles := new(MockVehicleCollection)
		devices := new(MockDeviceCollection)
		handler := NewRegistryHandler(new(MockVendorCollection), new(MockDriverCollection), vehicles, devices)

		vehicleID := primitive.NewObjectID()
		vehicles.On("FindVehicleByID", mock.Anything, vehicleID.Hex()).Return(&models.Vehicle{ID: vehicleID}, nil)
		devices.On("MarkDeviceAssigned", mock.Anything, "dev-042").Return(nil)
		vehicles.On("SetVehicleDevice", mock.Anything, vehicleID.Hex(), "dev-042").Return(nil)

		body, _ := json.Marshal(map[string]string{"device_name": "dev-042"})
		req := httptest.NewRequest("PUT", "/api/device/assign/"+vehicleID.Hex(), bytes.NewBuffer(body))
		req = withURLParam(req, "vehicleId", vehicleID.Hex())
		w := httptest.NewRecorder()

		handler.AssignDevice(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		devices.AssertExpectations(t)
		vehicles.AssertExpectations(t)
	})

	t.Run("already assigned device maps to 409", func(t *testing.T) {
		vehicles := new(MockVehicleCollection)
		devices := new(MockDeviceCollection)
		handler := NewRegistryHandler(new(MockVendorCollection), new(MockDriverCollection), vehicles, devices)

		vehicleID := primitive.NewObjectID()
		vehicles.On("FindVehicleByID", mock.Anything, vehicleID.Hex()).Return(&models.Vehicle{ID: vehicleID}, nil)
		devices.On("MarkDeviceAssigned", mock.Anything, "dev-042").Return(models.ErrConflict)

		body, _ := json.Marshal(map[string]string{"device_name": "dev-042"})
		req := httptest.NewRequest("PUT", "/api/device/assign/"+vehicleID.Hex(), bytes.NewBuffer(body))
		req = withURLParam(req, "vehicleId", vehicleID.Hex())
		w := httptest.NewRecorder()

		handler.AssignDevice(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		vehicles.AssertNotCalled(t, "SetVehicleDevice", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRegistryHandler_AddDriverToFleet(t *testing.T) {
	t.Run("successful link", func(t *testing.T) {
		vendors := new(MockVendorCollection)
		drivers := new(MockDriverCollection)
		handler := NewRegistryHandler(vendors, drivers, new(MockVehicleCollection), new(MockDeviceCollection))

		vendorID := primitive.NewObjectID()
		driverID := primitive.NewObjectID()
		drivers.On("FindDriverByID", mock.Anything, driverID.Hex()).Return(&models.Driver{ID: driverID, Name: "Sunil"}, nil)
		vendors.On("AddDriverToVendor", mock.Anything, vendorID.Hex(), driverID).Return(nil)

		body, _ := json.Marshal(map[string]string{"driver_id": driverID.Hex()})
		req := httptest.NewRequest("POST", "/api/vendor/driver/add/"+vendorID.Hex(), bytes.NewBuffer(body))
		req = withURLParam(req, "vendorId", vendorID.Hex())
		w := httptest.NewRecorder()

		handler.AddDriverToFleet(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		vendors.AssertExpectations(t)
	})

	t.Run("unknown driver maps to 404", func(t *testing.T) {
		vendors := new(MockVendorCollection)
		drivers := new(MockDriverCollection)
		handler := NewRegistryHandler(vendors, drivers, new(MockVehicleCollection), new(MockDeviceCollection))

		drivers.On("FindDriverByID", mock.Anything, "missing").Return(nil, models.ErrNotFound)

		body, _ := json.Marshal(map[string]string{"driver_id": "missing"})
		req := httptest.NewRequest("POST", "/api/vendor/driver/add/abc", bytes.NewBuffer(body))
		req = withURLParam(req, "vendorId", "abc")
		w := httptest.NewRecorder()

		handler.AddDriverToFleet(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
