package model

import (
	"errors"
	"math"
	"time"
)

// ErrNonNumericValue is returned when a measurement carries NaN or an infinity.
var ErrNonNumericValue = errors.New("non-numeric measurement value")

// Measurement is a single timestamped record. A field missing from Values is
// undefined for that record and is skipped by queries on it.
type Measurement struct {
	ID        int64
	Timestamp time.Time
	Values    map[Field]float64
}

// Value returns the value of f and whether it is defined.
func (m Measurement) Value(f Field) (float64, bool) {
	v, ok := m.Values[f]
	return v, ok
}

// Validate rejects values that cannot take part in aggregation.
func (m Measurement) Validate() error {
	for f, v := range m.Values {
		if !f.Valid() {
			return ErrUnknownField
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonNumericValue
		}
	}
	return nil
}

// Window is an inclusive [Start, End] range of UTC instants.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Point is one record's timestamp and the value of the queried field.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// Summary holds statistics over the defined values of one field.
// StdDev is the population standard deviation.
type Summary struct {
	Count  int64
	Avg    float64
	Min    float64
	Max    float64
	StdDev float64
}

// Rounded returns a copy with every statistic rounded to three decimals.
func (s Summary) Rounded() Summary {
	return Summary{
		Count:  s.Count,
		Avg:    Round3(s.Avg),
		Min:    Round3(s.Min),
		Max:    Round3(s.Max),
		StdDev: Round3(s.StdDev),
	}
}
