package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNoData reports a query that matched no defined values.
	ErrNoData = errors.New("no data found for the given query")
	// ErrStore wraps any failure returned by the measurement store.
	ErrStore = errors.New("store failure")
)
