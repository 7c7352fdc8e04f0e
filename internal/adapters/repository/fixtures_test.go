package repository

import (
	"time"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
)

var day = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func dayWindow(d time.Time) model.Window {
	return model.Window{Start: d, End: d.Add(24*time.Hour - time.Millisecond)}
}

func at(hours float64) time.Time {
	return day.Add(time.Duration(hours * float64(time.Hour)))
}

func rec(ts time.Time, values map[model.Field]float64) model.Measurement {
	return model.Measurement{Timestamp: ts, Values: values}
}

// scenario is three field1 readings of 10, 20 and 30 on 2025-01-01.
func scenario() []model.Measurement {
	return []model.Measurement{
		rec(at(1), map[model.Field]float64{model.Field1: 10, model.Field2: 50, model.Field3: 400}),
		rec(at(2), map[model.Field]float64{model.Field1: 20, model.Field2: 60, model.Field3: 500}),
		rec(at(3), map[model.Field]float64{model.Field1: 30, model.Field2: 70, model.Field3: 600}),
	}
}
