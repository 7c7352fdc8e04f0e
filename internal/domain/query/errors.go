package query

import (
	"errors"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
)

// Sentinel validation failures. Messages are shown to API clients as-is.
var (
	ErrInvalidField        = errors.New("invalid or missing 'field'. Allowed: " + model.AllowedList())
	ErrInvalidDateFormat   = errors.New("invalid date format. Use YYYY-MM-DD")
	ErrMissingDateRange    = errors.New("missing start_date or end_date. Format: YYYY-MM-DD")
	ErrIncompleteDateRange = errors.New("if you use date filter, provide BOTH start_date and end_date (YYYY-MM-DD)")
	ErrInvalidRange        = errors.New("start_date must be <= end_date")
)

// Kind is a stable, machine-readable name for a validation failure.
type Kind string

// Validation kinds.
const (
	KindInvalidField        Kind = "invalid_field"
	KindInvalidDateFormat   Kind = "invalid_date_format"
	KindMissingDateRange    Kind = "missing_date_range"
	KindIncompleteDateRange Kind = "incomplete_date_range"
	KindInvalidRange        Kind = "invalid_range"
)

var kinds = map[error]Kind{
	ErrInvalidField:        KindInvalidField,
	ErrInvalidDateFormat:   KindInvalidDateFormat,
	ErrMissingDateRange:    KindMissingDateRange,
	ErrIncompleteDateRange: KindIncompleteDateRange,
	ErrInvalidRange:        KindInvalidRange,
}

// KindOf returns the validation kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	for sentinel, kind := range kinds {
		if errors.Is(err, sentinel) {
			return kind, true
		}
	}
	return "", false
}

// IsValidation reports whether err is a client input failure.
func IsValidation(err error) bool {
	_, ok := KindOf(err)
	return ok
}
