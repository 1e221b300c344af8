package handlers

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshhaul/coldroute/internal/models"
	"github.com/freshhaul/coldroute/internal/telemetry"
)

// MockAccountCollection is a mock implementation of db.AccountCollection
type MockAccountCollection struct {
	mock.Mock
}

func (m *MockAccountCollection) InsertAccount(ctx context.Context, account models.Account) (primitive.ObjectID, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockAccountCollection) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountCollection) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountCollection) FindAccountByProfileID(ctx context.Context, profileID primitive.ObjectID) (*models.Account, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountCollection) UpdateAccountPassword(ctx context.Context, id string, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

// MockVendorCollection is a mock implementation of db.VendorCollection
type MockVendorCollection struct {
	mock.Mock
}

func (m *MockVendorCollection) InsertVendor(ctx context.Context, vendor models.Vendor) (primitive.ObjectID, error) {
	args := m.Called(ctx, vendor)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockVendorCollection) FindVendorByID(ctx context.Context, id string) (*models.Vendor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vendor), args.Error(1)
}

func (m *MockVendorCollection) AddDriverToVendor(ctx context.Context, vendorID string, driverID primitive.ObjectID) error {
	args := m.Called(ctx, vendorID, driverID)
	return args.Error(0)
}

func (m *MockVendorCollection) AddVehicleToVendor(ctx context.Context, vendorID string, vehicleID primitive.ObjectID) error {
	args := m.Called(ctx, vendorID, vehicleID)
	return args.Error(0)
}

// MockDriverCollection is a mock implementation of db.DriverCollection
type MockDriverCollection struct {
	mock.Mock
}

func (m *MockDriverCollection) InsertDriver(ctx context.Context, driver models.Driver) (primitive.ObjectID, error) {
	args := m.Called(ctx, driver)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockDriverCollection) FindDriverByID(ctx context.Context, id string) (*models.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Driver), args.Error(1)
}

func (m *MockDriverCollection) FindDriversByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Driver, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Driver), args.Error(1)
}

func (m *MockDriverCollection) PushWork(ctx context.Context, driverID primitive.ObjectID, entry models.WorkEntry, dates []time.Time) error {
	args := m.Called(ctx, driverID, entry, dates)
	return args.Error(0)
}

func (m *MockDriverCollection) PullWork(ctx context.Context, driverID primitive.ObjectID, entry models.WorkEntry, from, to time.Time) error {
	args := m.Called(ctx, driverID, entry, from, to)
	return args.Error(0)
}

// MockVehicleCollection is a mock implementation of db.VehicleCollection
type MockVehicleCollection struct {
	mock.Mock
}

func (m *MockVehicleCollection) InsertVehicle(ctx context.Context, vehicle models.Vehicle) (primitive.ObjectID, error) {
	args := m.Called(ctx, vehicle)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockVehicleCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) FindVehiclesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Vehicle, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) SetVehicleDevice(ctx context.Context, id string, deviceName string) error {
	args := m.Called(ctx, id, deviceName)
	return args.Error(0)
}

// MockDeviceCollection is a mock implementation of db.DeviceCollection
type MockDeviceCollection struct {
	mock.Mock
}

func (m *MockDeviceCollection) InsertDevice(ctx context.Context, device models.Device) (primitive.ObjectID, error) {
	args := m.Called(ctx, device)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockDeviceCollection) FindDeviceByName(ctx context.Context, name string) (*models.Device, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Device), args.Error(1)
}

func (m *MockDeviceCollection) MarkDeviceAssigned(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockDeviceCollection) AppendDeviceLocation(ctx context.Context, name string, point models.LocationPoint) error {
	args := m.Called(ctx, name, point)
	return args.Error(0)
}

func (m *MockDeviceCollection) AppendDeviceReading(ctx context.Context, name string, reading models.SensorReading) error {
	args := m.Called(ctx, name, reading)
	return args.Error(0)
}

// MockOTPStore is a mock implementation of OTPStore
type MockOTPStore struct {
	mock.Mock
}

func (m *MockOTPStore) Issue(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockOTPStore) Verify(ctx context.Context, email, code string) (string, error) {
	args := m.Called(ctx, email, code)
	return args.String(0), args.Error(1)
}

func (m *MockOTPStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

// MockExportService is a mock implementation of ExportService
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) Create(ctx context.Context, vendorID string, req models.CreateExportRequest) (*models.Export, error) {
	args := m.Called(ctx, vendorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Export), args.Error(1)
}

func (m *MockExportService) Accept(ctx context.Context, exportID string) (*models.Export, error) {
	args := m.Called(ctx, exportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Export), args.Error(1)
}

func (m *MockExportService) Reject(ctx context.Context, exportID string, reason string) error {
	args := m.Called(ctx, exportID, reason)
	return args.Error(0)
}

func (m *MockExportService) StartByDriver(ctx context.Context, exportID string) (*models.Export, error) {
	args := m.Called(ctx, exportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Export), args.Error(1)
}

func (m *MockExportService) StartByVendor(ctx context.Context, exportID string) (*models.Export, error) {
	args := m.Called(ctx, exportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Export), args.Error(1)
}

func (m *MockExportService) Complete(ctx context.Context, exportID string) (*models.Export, error) {
	args := m.Called(ctx, exportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Export), args.Error(1)
}

func (m *MockExportService) Delete(ctx context.Context, exportID string) error {
	args := m.Called(ctx, exportID)
	return args.Error(0)
}

func (m *MockExportService) Get(ctx context.Context, exportID string) (*models.Export, error) {
	args := m.Called(ctx, exportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Export), args.Error(1)
}

func (m *MockExportService) ListByVendor(ctx context.Context, vendorID string) ([]models.Export, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Export), args.Error(1)
}

func (m *MockExportService) ListByDriver(ctx context.Context, driverID string) ([]models.Export, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Export), args.Error(1)
}

func (m *MockExportService) AvailableResources(ctx context.Context, vendorID string, start, end time.Time) (*models.Availability, error) {
	args := m.Called(ctx, vendorID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Availability), args.Error(1)
}

// MockTelemetryService is a mock implementation of TelemetryService
type MockTelemetryService struct {
	mock.Mock
}

func (m *MockTelemetryService) SensorSeries(ctx context.Context, exportID string, f telemetry.SeriesFilter) ([]models.SensorReading, error) {
	args := m.Called(ctx, exportID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SensorReading), args.Error(1)
}

func (m *MockTelemetryService) LocationSeries(ctx context.Context, exportID string) ([]models.LocationPoint, error) {
	args := m.Called(ctx, exportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LocationPoint), args.Error(1)
}

func (m *MockTelemetryService) AppendIntermediateLocation(ctx context.Context, exportID string, point models.GeoPoint) error {
	args := m.Called(ctx, exportID, point)
	return args.Error(0)
}
