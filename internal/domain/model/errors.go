package model

import "errors"

// Sentinel errors shared across layers.
var (
	// ErrFightNotFound is returned when the report has no fight with the requested id.
	ErrFightNotFound = errors.New("no such fight")
)
