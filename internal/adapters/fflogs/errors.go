package fflogs

import "errors"

// Sentinel error kinds for report API calls.
var (
	ErrRequest          = errors.New("report api request failed")
	ErrUnexpectedStatus = errors.New("report api returned unexpected status")
	ErrDecode           = errors.New("report api response could not be decoded")
)
