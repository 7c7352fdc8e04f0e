// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
	"github.com/nur12play/Analiticpplatform/internal/domain/query"
	"github.com/nur12play/Analiticpplatform/pkg/logger"
	"github.com/nur12play/Analiticpplatform/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Series returns the ordered values of a field inside a window.
	Series(ctx context.Context, q query.Series) ([]model.Point, error)
	// Metrics returns rounded summary statistics of a field.
	Metrics(ctx context.Context, q query.Metrics) (model.Summary, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	measurementsHandler *MeasurementsHandler

	metricsEnabled bool
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMetricsEndpoint mounts GET /metrics when enabled.
func WithMetricsEndpoint(enabled bool) Option {
	return func(s *Server) {
		s.metricsEnabled = enabled
	}
}

// WithLogger sets the access logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		healthHandler:       NewHealthHandler(deps),
		measurementsHandler: NewMeasurementsHandler(deps),
		metricsEnabled:      true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Router returns a chi router with the middleware stack and API routes.
// Further routes (docs, UI) can be mounted on the result.
func (s *Server) Router(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(Metrics)
	s.Register(ctx, r)
	return r
}

// Register attaches all API routes to r. The measurement and health routes
// are also served under /api for clients of the legacy path layout.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Route("/measurements", s.measurementRoutes)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.healthHandler.HandleHealth)
		r.Route("/measurements", s.measurementRoutes)
	})
	if s.metricsEnabled {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	}
}

func (s *Server) measurementRoutes(r chi.Router) {
	r.Get("/", s.measurementsHandler.HandleSeries)
	r.Get("/metrics", s.measurementsHandler.HandleMetrics)
}
