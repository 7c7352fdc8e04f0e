// Package query validates raw request parameters into query descriptors.
//
// Checks run in a fixed order and the first failure wins: field, date
// presence, date format, date order. An empty parameter counts as absent.
package query

import (
	"regexp"
	"time"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
)

const (
	dateLayout = "2006-01-02"
	endOfDay   = 24*time.Hour - time.Millisecond
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Series describes a validated range fetch.
type Series struct {
	Field  model.Field
	Window model.Window
}

// Metrics describes a validated aggregate query. A nil Window means no time filter.
type Metrics struct {
	Field  model.Field
	Window *model.Window
}

// ParseSeries validates the parameters of a range fetch. Both dates are required.
func ParseSeries(field, startDate, endDate string) (Series, error) {
	f, err := parseField(field)
	if err != nil {
		return Series{}, err
	}
	if startDate == "" || endDate == "" {
		return Series{}, ErrMissingDateRange
	}
	w, err := parseWindow(startDate, endDate)
	if err != nil {
		return Series{}, err
	}
	return Series{Field: f, Window: w}, nil
}

// ParseMetrics validates the parameters of an aggregate query. Dates are
// optional as a pair.
func ParseMetrics(field, startDate, endDate string) (Metrics, error) {
	f, err := parseField(field)
	if err != nil {
		return Metrics{}, err
	}
	if startDate == "" && endDate == "" {
		return Metrics{Field: f}, nil
	}
	if startDate == "" || endDate == "" {
		return Metrics{}, ErrIncompleteDateRange
	}
	w, err := parseWindow(startDate, endDate)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{Field: f, Window: &w}, nil
}

func parseField(name string) (model.Field, error) {
	f, err := model.ParseField(name)
	if err != nil {
		return 0, ErrInvalidField
	}
	return f, nil
}

// parseWindow normalizes start to 00:00:00.000 and end to 23:59:59.999 UTC.
func parseWindow(startDate, endDate string) (model.Window, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return model.Window{}, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return model.Window{}, err
	}
	w := model.Window{Start: start, End: end.Add(endOfDay)}
	if w.Start.After(w.End) {
		return model.Window{}, ErrInvalidRange
	}
	return w, nil
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrInvalidDateFormat
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return t, nil
}
