// Package service implements the two analytics queries on top of a
// measurement store: the range series and the summary metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nur12play/Analiticpplatform/internal/adapters/repository"
	"github.com/nur12play/Analiticpplatform/internal/domain/model"
	"github.com/nur12play/Analiticpplatform/internal/domain/query"
	"github.com/nur12play/Analiticpplatform/pkg/logger"
	"github.com/nur12play/Analiticpplatform/pkg/metrics"
)

// Query kinds used as metric and log labels.
const (
	kindSeries  = "series"
	kindMetrics = "metrics"
)

// Service answers validated analytics queries. It holds no per-request
// state; the store is the only shared resource.
type Service struct {
	store        repository.Store
	queryTimeout time.Duration
	logger       logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the measurement store. The caller owns its lifecycle.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithQueryTimeout bounds each store call. Zero leaves the request context as is.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.queryTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service. Without WithStore it uses an empty MemoryStore.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Series returns the values of q.Field in q.Window ordered by timestamp.
// Values are returned as stored. An empty match is ErrNoData.
func (s *Service) Series(ctx context.Context, q query.Series) ([]model.Point, error) {
	start := time.Now()
	defer observe(kindSeries, start)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	points, err := s.store.Series(ctx, q.Field, q.Window)
	if err != nil {
		return nil, s.storeFailure(ctx, kindSeries, q.Field, err)
	}
	if len(points) == 0 {
		metrics.RecordQuery(kindSeries, q.Field.String(), "no_data")
		metrics.RecordNoData(q.Field.String())
		return nil, ErrNoData
	}

	metrics.RecordQuery(kindSeries, q.Field.String(), "ok")
	metrics.RecordSeriesPoints(len(points))
	s.logger.Debug(ctx, "series served",
		logger.String("field", q.Field.String()),
		logger.Int("points", len(points)),
	)
	return points, nil
}

// Metrics summarizes q.Field over q.Window, or over every record when the
// window is nil. All figures are rounded to 3 decimal places.
func (s *Service) Metrics(ctx context.Context, q query.Metrics) (model.Summary, error) {
	start := time.Now()
	defer observe(kindMetrics, start)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	sum, err := s.store.Summarize(ctx, q.Field, q.Window)
	if err != nil {
		return model.Summary{}, s.storeFailure(ctx, kindMetrics, q.Field, err)
	}
	if sum.Count == 0 {
		metrics.RecordQuery(kindMetrics, q.Field.String(), "no_data")
		metrics.RecordNoData(q.Field.String())
		return model.Summary{}, ErrNoData
	}

	metrics.RecordQuery(kindMetrics, q.Field.String(), "ok")
	s.logger.Debug(ctx, "metrics served",
		logger.String("field", q.Field.String()),
		logger.Int64("count", sum.Count),
	)
	return sum.Rounded(), nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func (s *Service) storeFailure(ctx context.Context, kind string, field model.Field, err error) error {
	metrics.RecordQuery(kind, field.String(), "error")
	severity := "error"
	if errors.Is(err, context.Canceled) {
		severity = "warning"
	}
	metrics.RecordErrorByType("store_failure", severity)
	s.logger.Error(ctx, "store query failed",
		logger.String("query", kind),
		logger.String("field", field.String()),
		logger.Error(err),
	)
	return fmt.Errorf("%w: %w", ErrStore, err)
}

func observe(kind string, start time.Time) {
	metrics.RecordQueryLatency(kind, float64(time.Since(start).Microseconds())/1000)
}
