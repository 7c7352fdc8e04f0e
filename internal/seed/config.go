// Package seed generates a synthetic measurement series and loads it into a store.
package seed

import (
	"fmt"
	"time"
)

// Config holds configuration for a seed run.
type Config struct {
	Start      time.Time     // First timestamp, UTC
	Days       int           // Length of the series in days
	Step       time.Duration // Spacing between consecutive records
	Seed       uint64        // RNG seed; 0 picks a random one
	BatchSize  int           // Records per Insert call
	Workers    int           // Concurrent Insert calls
	Reset      bool          // Wipe the store before inserting
	OutputFile string        // Optional JSON dump of the generated records
}

// DefaultConfig returns a week of half-hourly records from 2025-01-01.
func DefaultConfig() Config {
	return Config{
		Start:     DefaultStart,
		Days:      DefaultDays,
		Step:      DefaultStep,
		BatchSize: DefaultBatchSize,
		Workers:   DefaultWorkers,
		Reset:     true,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Days <= 0:
		return fmt.Errorf("%w: days must be > 0", ErrInvalidConfig)
	case c.Step <= 0:
		return fmt.Errorf("%w: step must be > 0", ErrInvalidConfig)
	case c.Step%time.Millisecond != 0:
		return fmt.Errorf("%w: step must be a whole number of milliseconds", ErrInvalidConfig)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be > 0", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be > 0", ErrInvalidConfig)
	}
	return nil
}

// Total returns how many records the configuration produces.
func (c Config) Total() int {
	return int(time.Duration(c.Days) * 24 * time.Hour / c.Step)
}

// Stats holds the outcome of a seed run.
type Stats struct {
	RunID     string
	Generated int
	Inserted  int
	Batches   int
	Seed      uint64
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
