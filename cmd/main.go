package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/nur12play/Analiticpplatform/internal/adapters/http/api"
	"github.com/nur12play/Analiticpplatform/internal/adapters/http/site"
	"github.com/nur12play/Analiticpplatform/internal/adapters/http/swagger"
	"github.com/nur12play/Analiticpplatform/internal/adapters/repository"
	service "github.com/nur12play/Analiticpplatform/internal/app"
	"github.com/nur12play/Analiticpplatform/internal/config"
	"github.com/nur12play/Analiticpplatform/pkg/logger"
	"github.com/nur12play/Analiticpplatform/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logging
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(metricsOptions(cfg)...)

	if err := run(ctx, cfg); err != nil {
		log.Error(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "server stopped")
}

// run opens the store, serves HTTP until ctx is cancelled, then shuts down.
func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "failed to close store", logger.Error(err))
		}
	}()

	svc := service.New(
		service.WithStore(store),
		service.WithQueryTimeout(cfg.QueryTimeout()),
		service.WithLogger(log.Named("service")),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		log.Info(gctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("storage", cfg.StorageDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Start system metrics updater; returns at once when metrics are disabled
	g.Go(func() error {
		metrics.RunSystemCollector(gctx)
		return nil
	})

	// Wait for shutdown signal or a server failure
	g.Go(func() error {
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// metricsOptions maps the metrics_* settings onto the metrics manager.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithRefreshInterval(cfg.MetricsRefresh()),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBucketsMS),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	}
}

// openStore opens the configured store and verifies it is reachable.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	store, err := repository.New(ctx, cfg.StorageDriver, cfg.DatabaseDSN,
		repository.WithMaxOpenConns(cfg.MaxOpenConns),
		repository.WithMaxIdleConns(cfg.MaxIdleConns),
		repository.WithConnMaxLifetime(cfg.ConnMaxLifetime()),
		repository.WithAutoMigrate(cfg.AutoMigrate),
	)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// newHandler builds the full route tree: API, docs and optionally the UI.
func newHandler(ctx context.Context, cfg *config.Config, deps api.Dependencies) http.Handler {
	r := api.NewServer(deps,
		api.WithMetricsEndpoint(cfg.MetricsEnabled),
		api.WithLogger(logger.Get().Named("http")),
	).Router(ctx)

	// Register API docs under /api-docs
	swagger.Register(ctx, r)

	if cfg.UIEnabled {
		site.Register(ctx, r)
	}
	return r
}
