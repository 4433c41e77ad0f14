package service

import "errors"

// Sentinel errors returned by Run.
var (
	ErrNoSource = errors.New("no event source configured")
	ErrFetch    = errors.New("fetch events failed")
)
