package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nur12play/Analiticpplatform/internal/adapters/repository"
	"github.com/nur12play/Analiticpplatform/internal/config"
	"github.com/nur12play/Analiticpplatform/internal/domain/query"
	"github.com/nur12play/Analiticpplatform/internal/seed"
	"github.com/nur12play/Analiticpplatform/pkg/logger"
)

const defaultSeedTimeout = 10 * time.Minute

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	defaults := seed.DefaultConfig()
	var (
		driver     = flag.String("driver", cfg.StorageDriver, "Storage driver: sqlite, postgres or memory")
		dsn        = flag.String("dsn", cfg.DatabaseDSN, "Connection string")
		start      = flag.String("start", defaults.Start.Format("2006-01-02"), "First day, YYYY-MM-DD")
		days       = flag.Int("days", defaults.Days, "Number of days to generate")
		step       = flag.Duration("step", defaults.Step, "Spacing between records")
		rngSeed    = flag.Uint64("seed", 0, "RNG seed, 0 for random")
		batch      = flag.Int("batch", defaults.BatchSize, "Records per insert")
		workers    = flag.Int("workers", defaults.Workers, "Concurrent inserts")
		keep       = flag.Bool("keep", false, "Do not wipe the store first")
		outputFile = flag.String("output", "", "Also write the generated records to this JSON file")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)
	log := logger.Get().Named("seed")

	startDay, err := query.ParseDate(*start)
	if err != nil {
		log.Error(ctx, "invalid -start", logger.String("start", *start), logger.Error(err))
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultSeedTimeout)
	defer cancel()

	store, err := repository.New(ctx, *driver, *dsn,
		repository.WithMaxOpenConns(cfg.MaxOpenConns),
		repository.WithMaxIdleConns(cfg.MaxIdleConns),
		repository.WithConnMaxLifetime(cfg.ConnMaxLifetime()),
		repository.WithAutoMigrate(true),
	)
	if err != nil {
		log.Error(ctx, "failed to open store", logger.String("driver", *driver), logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	stats, err := seed.Run(ctx, store, seed.Config{
		Start:      startDay,
		Days:       *days,
		Step:       *step,
		Seed:       *rngSeed,
		BatchSize:  *batch,
		Workers:    *workers,
		Reset:      !*keep,
		OutputFile: *outputFile,
	})
	if err != nil {
		log.Error(ctx, "seed failed", logger.Error(err))
		store.Close()
		os.Exit(1)
	}
	log.Info(ctx, "seeded measurements",
		logger.Int("records", stats.Inserted),
		logger.Any("seed", stats.Seed),
		logger.String("driver", *driver),
	)
}
