package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshhaul/coldroute/internal/models"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"disjoint before", day(1), day(3), day(5), day(8), false},
		{"disjoint after", day(5), day(8), day(1), day(3), false},
		{"contained", day(2), day(4), day(1), day(8), true},
		{"containing", day(1), day(8), day(2), day(4), true},
		{"partial overlap left", day(1), day(5), day(4), day(8), true},
		{"partial overlap right", day(4), day(8), day(1), day(5), true},
		{"identical windows", day(1), day(5), day(1), day(5), true},
		{"touching at end", day(1), day(5), day(5), day(8), true},
		{"touching at start", day(5), day(8), day(1), day(5), true},
		{"single day windows touching", day(5), day(5), day(5), day(5), true},
		{"adjacent days", day(1), day(4), day(5), day(8), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			// Overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

// MockExportCollection is a mock implementation of db.ExportCollection
type MockExportCollection struct {
	mock.Mock
}

func (m *MockExportCollection) InsertExport(ctx context.Context, export models.Export) (primitive.ObjectID, error) {
	args := m.Called(ctx, export)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *MockExportCollection) FindExportByID(ctx context.Context, id string) (*models.Export, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Export), args.Error(1)
}

func (m *MockExportCollection) FindExportsByVendor(ctx context.Context, vendorID primitive.ObjectID) ([]models.Export, error) {
	args := m.Called(ctx, vendorID)
	return args.Get(0).([]models.Export), args.Error(1)
}

func (m *MockExportCollection) FindExportsByDriver(ctx context.Context, driverID primitive.ObjectID) ([]models.Export, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).([]models.Export), args.Error(1)
}

func (m *MockExportCollection) FindOverlapping(ctx context.Context, start, end time.Time, driverID, vehicleID *primitive.ObjectID) ([]models.Export, error) {
	args := m.Called(ctx, start, end, driverID, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Export), args.Error(1)
}

func (m *MockExportCollection) UpdateExportGuarded(ctx context.Context, id string, guard bson.M, set bson.M) (bool, error) {
	args := m.Called(ctx, id, guard, set)
	return args.Bool(0), args.Error(1)
}

func (m *MockExportCollection) DeleteExportGuarded(ctx context.Context, id string, guard bson.M) (bool, error) {
	args := m.Called(ctx, id, guard)
	return args.Bool(0), args.Error(1)
}

func (m *MockExportCollection) PushIntermediateLocation(ctx context.Context, id string, point models.GeoPoint) error {
	args := m.Called(ctx, id, point)
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
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockVehicleCollection) SetVehicleDevice(ctx context.Context, id string, deviceName string) error {
	args := m.Called(ctx, id, deviceName)
	return args.Error(0)
}

func TestDetector_HasConflict(t *testing.T) {
	driverID := primitive.NewObjectID()
	vehicleID := primitive.NewObjectID()

	t.Run("no overlapping exports", func(t *testing.T) {
		exports := new(MockExportCollection)
		detector := NewDetector(exports, new(MockDriverCollection), new(MockVehicleCollection))

		exports.On("FindOverlapping", mock.Anything, day(1), day(5), &driverID, &vehicleID).
			Return([]models.Export{}, nil)

		conflict, err := detector.HasConflict(context.Background(), driverID, vehicleID, day(1), day(5))
		assert.NoError(t, err)
		assert.False(t, conflict)
	})

	t.Run("shared resource blocks", func(t *testing.T) {
		exports := new(MockExportCollection)
		detector := NewDetector(exports, new(MockDriverCollection), new(MockVehicleCollection))

		exports.On("FindOverlapping", mock.Anything, day(1), day(5), &driverID, &vehicleID).
			Return([]models.Export{{ID: primitive.NewObjectID(), DriverID: driverID}}, nil)

		conflict, err := detector.HasConflict(context.Background(), driverID, vehicleID, day(1), day(5))
		assert.NoError(t, err)
		assert.True(t, conflict)
	})
}

func TestDetector_AvailableResources(t *testing.T) {
	freeDriver := primitive.NewObjectID()
	busyDriver := primitive.NewObjectID()
	freeVehicle := primitive.NewObjectID()
	busyVehicle := primitive.NewObjectID()

	vendor := &models.Vendor{
		ID:       primitive.NewObjectID(),
		Drivers:  []primitive.ObjectID{freeDriver, busyDriver},
		Vehicles: []primitive.ObjectID{freeVehicle, busyVehicle},
	}

	exports := new(MockExportCollection)
	drivers := new(MockDriverCollection)
	vehicles := new(MockVehicleCollection)
	detector := NewDetector(exports, drivers, vehicles)

	var nilID *primitive.ObjectID
	exports.On("FindOverlapping", mock.Anything, day(1), day(5), nilID, nilID).
		Return([]models.Export{{DriverID: busyDriver, VehicleID: busyVehicle}}, nil)
	drivers.On("FindDriversByIDs", mock.Anything, []primitive.ObjectID{freeDriver}).
		Return([]models.Driver{{ID: freeDriver, Name: "Sunil"}}, nil)
	vehicles.On("FindVehiclesByIDs", mock.Anything, []primitive.ObjectID{freeVehicle}).
		Return([]models.Vehicle{{ID: freeVehicle, VehicleNo: "CAB-1234"}}, nil)

	availability, err := detector.AvailableResources(context.Background(), vendor, day(1), day(5))

	assert.NoError(t, err)
	assert.Len(t, availability.Drivers, 1)
	assert.Equal(t, freeDriver, availability.Drivers[0].ID)
	assert.Len(t, availability.Vehicles, 1)
	assert.Equal(t, freeVehicle, availability.Vehicles[0].ID)
}
