package models

import "errors"

var (
	// ErrNotFound is returned when a referenced entity is absent, including a
	// broken link in the export -> vehicle -> device resolution chain.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a proposed export overlaps in time with an
	// existing export sharing the same driver or vehicle.
	ErrConflict = errors.New("resource is already booked for this period")

	// ErrStateGuard is returned when a lifecycle transition is attempted from
	// the wrong state, e.g. completing an export that was never started.
	ErrStateGuard = errors.New("transition not allowed from current state")

	// ErrValidation is returned for missing or malformed input.
	ErrValidation = errors.New("invalid input")
)
