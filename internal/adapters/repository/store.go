// Package repository defines the measurement store interfaces and their
// in-memory and SQL implementations.
package repository

import (
	"context"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
)

// Reader answers the two read queries the service exposes.
type Reader interface {
	// Series returns the defined values of field inside window, ordered by
	// timestamp ascending and then by insertion order.
	Series(ctx context.Context, field model.Field, window model.Window) ([]model.Point, error)

	// Summarize computes count, mean, min, max and population standard
	// deviation of field in one pass. A nil window means every record.
	// An empty match yields a zero Summary with Count 0.
	Summarize(ctx context.Context, field model.Field, window *model.Window) (model.Summary, error)
}

// Writer is the seeding write path. The HTTP service never calls it.
type Writer interface {
	// Insert stores measurements atomically, in slice order.
	Insert(ctx context.Context, ms []model.Measurement) error
	// Reset deletes every measurement.
	Reset(ctx context.Context) error
}

// Store is a measurement store with an explicit lifecycle.
type Store interface {
	Reader
	Writer

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying resources.
	Close() error
}

// DriverMemory selects the in-process MemoryStore.
const DriverMemory = "memory"

// New opens the store named by driver. The memory driver ignores dsn and opts.
func New(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	if driver == DriverMemory {
		return NewMemoryStore(), nil
	}
	s, err := Open(ctx, driver, dsn, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}
