package seed

import (
	"errors"
	"time"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
)

// Defaults for a seed run.
var DefaultStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	DefaultDays      = 7
	DefaultStep      = 30 * time.Minute
	DefaultBatchSize = 100
	DefaultWorkers   = 2
)

// valuePlaces is the number of decimals kept on generated values.
const valuePlaces = 2

// Range is a half-open interval [Min, Max).
type Range struct {
	Min, Max float64
}

// Ranges holds the value interval of each field.
var Ranges = map[model.Field]Range{
	model.Field1: {Min: 17, Max: 30},
	model.Field2: {Min: 35, Max: 85},
	model.Field3: {Min: 300, Max: 650},
}

// Sentinel kinds for seed errors.
var (
	ErrInvalidConfig = errors.New("invalid seed config")
	ErrInsert        = errors.New("seed insert failed")
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)
