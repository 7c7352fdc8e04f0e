package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrClosed             = errors.New("store closed")
	ErrUnsupportedDriver  = errors.New("unsupported storage driver")
	ErrInvalidMeasurement = errors.New("invalid measurement")
)
