package workhistory

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshhaul/coldroute/internal/db"
	"github.com/freshhaul/coldroute/internal/models"
)

// ExpandDates expands [start, end] into one UTC-midnight date per calendar
// day, inclusive of both endpoints.
func ExpandDates(start, end time.Time) []time.Time {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var dates []time.Time
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		dates = append(dates, day)
	}
	return dates
}

// Ledger maintains each driver's work entries and booked-date index in
// lockstep with export creation and deletion. Mutations for the same driver
// are serialized so concurrent create/delete cannot lose updates; the arrays
// themselves are never deduplicated.
//
// The ledger is only ever called by the export lifecycle engine, keeping the
// derived state behind a single code path.
type Ledger struct {
	drivers db.DriverCollection

	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

// NewLedger creates a work-history ledger.
func NewLedger(drivers db.DriverCollection) *Ledger {
	return &Ledger{
		drivers: drivers,
		locks:   make(map[primitive.ObjectID]*sync.Mutex),
	}
}

// RecordAssignment appends a work entry for the vendor and one booked date per
// calendar day in [start, end].
func (l *Ledger) RecordAssignment(ctx context.Context, driverID, vendorID primitive.ObjectID, start, end time.Time, salary float64) error {
	lock := l.driverLock(driverID)
	lock.Lock()
	defer lock.Unlock()

	entry := models.WorkEntry{
		VendorID:  vendorID,
		StartDate: start,
		EndDate:   end,
		Salary:    salary,
		Paid:      false,
	}
	return l.drivers.PushWork(ctx, driverID, entry, ExpandDates(start, end))
}

// RemoveAssignment removes the work entry matching the vendor and window, and
// every booked date inside the window. Dates contributed by other exports stay
// untouched.
func (l *Ledger) RemoveAssignment(ctx context.Context, driverID, vendorID primitive.ObjectID, start, end time.Time) error {
	lock := l.driverLock(driverID)
	lock.Lock()
	defer lock.Unlock()

	days := ExpandDates(start, end)
	entry := models.WorkEntry{
		VendorID:  vendorID,
		StartDate: start,
		EndDate:   end,
	}
	return l.drivers.PullWork(ctx, driverID, entry, days[0], days[len(days)-1])
}

func (l *Ledger) driverLock(driverID primitive.ObjectID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[driverID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[driverID] = lock
	}
	return lock
}
