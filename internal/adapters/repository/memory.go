package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
	"github.com/nur12play/Analiticpplatform/pkg/metrics"
)

const memoryBackend = "memory"

// MemoryStore keeps measurements in a slice sorted by (timestamp, id).
// Reads take a shared lock, so each query sees one consistent snapshot.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.Measurement
	nextID  int64
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert validates and appends measurements. IDs are assigned in slice order.
func (s *MemoryStore) Insert(_ context.Context, ms []model.Measurement) error {
	for i, m := range ms {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("%w: record %d: %w", ErrInvalidMeasurement, i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	for _, m := range ms {
		s.nextID++
		values := make(map[model.Field]float64, len(m.Values))
		for f, v := range m.Values {
			values[f] = v
		}
		s.records = append(s.records, model.Measurement{
			ID:        s.nextID,
			Timestamp: m.Timestamp.UTC().Truncate(time.Millisecond),
			Values:    values,
		})
	}
	// Stable sort keeps insertion order among equal timestamps.
	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].Timestamp.Before(s.records[j].Timestamp)
	})
	metrics.UpdateRepositoryRecordsTotal(memoryBackend, len(s.records))
	return nil
}

// Reset drops every record.
func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.records = nil
	metrics.UpdateRepositoryRecordsTotal(memoryBackend, 0)
	return nil
}

// Series returns the defined values of field inside window.
func (s *MemoryStore) Series(_ context.Context, field model.Field, window model.Window) ([]model.Point, error) {
	start := time.Now()
	defer observe("series", memoryBackend, start)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var out []model.Point
	for i := s.firstAtOrAfter(window.Start); i < len(s.records); i++ {
		rec := s.records[i]
		if rec.Timestamp.After(window.End) {
			break
		}
		if v, ok := rec.Value(field); ok {
			out = append(out, model.Point{Timestamp: rec.Timestamp, Value: v})
		}
	}
	metrics.RecordRepositoryRowsReturned("series", memoryBackend, len(out))
	return out, nil
}

// Summarize computes statistics over the defined values of field.
func (s *MemoryStore) Summarize(_ context.Context, field model.Field, window *model.Window) (model.Summary, error) {
	start := time.Now()
	defer observe("summarize", memoryBackend, start)

	values, err := s.collect(field, window)
	if err != nil {
		return model.Summary{}, err
	}
	if len(values) == 0 {
		return model.Summary{}, nil
	}

	data := stats.Float64Data(values)
	sum := model.Summary{Count: int64(len(values))}
	if sum.Avg, err = data.Mean(); err != nil {
		return model.Summary{}, fmt.Errorf("mean: %w", err)
	}
	if sum.Min, err = data.Min(); err != nil {
		return model.Summary{}, fmt.Errorf("min: %w", err)
	}
	if sum.Max, err = data.Max(); err != nil {
		return model.Summary{}, fmt.Errorf("max: %w", err)
	}
	if sum.StdDev, err = stats.StandardDeviationPopulation(data); err != nil {
		return model.Summary{}, fmt.Errorf("stddev: %w", err)
	}
	return sum, nil
}

// collect copies the matching values under a single read lock.
func (s *MemoryStore) collect(field model.Field, window *model.Window) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	from := 0
	if window != nil {
		from = s.firstAtOrAfter(window.Start)
	}
	var values []float64
	for i := from; i < len(s.records); i++ {
		rec := s.records[i]
		if window != nil && rec.Timestamp.After(window.End) {
			break
		}
		if v, ok := rec.Value(field); ok {
			values = append(values, v)
		}
	}
	return values, nil
}

// firstAtOrAfter returns the index of the first record not before t.
func (s *MemoryStore) firstAtOrAfter(t time.Time) int {
	return sort.Search(len(s.records), func(i int) bool {
		return !s.records[i].Timestamp.Before(t)
	})
}

// Ping reports whether the store is still open.
func (s *MemoryStore) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed and drops its records.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.records = nil
	return nil
}

func observe(operation, backend string, start time.Time) {
	metrics.RecordRepositoryQueryLatency(operation, backend, float64(time.Since(start).Microseconds())/1000)
}

var _ Store = (*MemoryStore)(nil)
