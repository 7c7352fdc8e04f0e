package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nur12play/Analiticpplatform/internal/adapters/repository"
	"github.com/nur12play/Analiticpplatform/internal/domain/model"
	"github.com/nur12play/Analiticpplatform/pkg/logger"
	"github.com/nur12play/Analiticpplatform/pkg/metrics"
)

// Run generates the series and writes it to store in batches.
func Run(ctx context.Context, store repository.Writer, cfg Config) (Stats, error) {
	stats := Stats{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
		Seed:      cfg.Seed,
	}
	if err := cfg.Validate(); err != nil {
		return stats, err
	}
	if stats.Seed == 0 {
		stats.Seed = rand.Uint64()
	}

	log := logger.Get().Named("seed")
	log.Info(ctx, "starting seed run",
		logger.String("runID", stats.RunID),
		logger.String("start", cfg.Start.UTC().Format(time.RFC3339)),
		logger.Int("days", cfg.Days),
		logger.Duration("step", cfg.Step),
		logger.Any("seed", stats.Seed),
		logger.Int("batchSize", cfg.BatchSize),
		logger.Int("workers", cfg.Workers),
	)

	// Step 1: Wipe existing data
	if cfg.Reset {
		if err := store.Reset(ctx); err != nil {
			return stats, fmt.Errorf("%w: reset: %w", ErrInsert, err)
		}
		log.Info(ctx, "store reset")
	}

	// Step 2: Generate records
	records := Generate(cfg, stats.Seed)
	stats.Generated = len(records)

	// Step 3: Insert batches concurrently
	inserted, batches, err := insertBatches(ctx, store, records, cfg)
	stats.Inserted, stats.Batches = inserted, batches
	if err != nil {
		return stats, err
	}

	// Step 4: Save records to file
	if cfg.OutputFile != "" {
		if err := saveToFile(cfg.OutputFile, records); err != nil {
			log.Warn(ctx, "failed to save records to file", logger.Error(err))
		}
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	metrics.RecordSeededRecords(stats.Inserted)
	metrics.RecordSeedDuration(float64(stats.Duration.Microseconds()) / 1000)

	log.Info(ctx, "seed run completed",
		logger.String("runID", stats.RunID),
		logger.Int("inserted", stats.Inserted),
		logger.Int("batches", stats.Batches),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// insertBatches writes records in chunks of cfg.BatchSize with at most
// cfg.Workers Insert calls in flight. It stops at the first failure.
func insertBatches(ctx context.Context, store repository.Writer, records []model.Measurement, cfg Config) (int, int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	batches := (len(records) + cfg.BatchSize - 1) / cfg.BatchSize
	counts := make([]int, batches)
	for idx := range batches {
		lo := idx * cfg.BatchSize
		batch := records[lo:min(lo+cfg.BatchSize, len(records))]

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := store.Insert(gctx, batch); err != nil {
				return fmt.Errorf("%w: batch %d: %w", ErrInsert, idx, err)
			}
			counts[idx] = len(batch)
			return nil
		})
	}
	err := g.Wait()

	inserted := 0
	for _, n := range counts {
		inserted += n
	}
	return inserted, batches, err
}

// record is the on-disk shape of a generated measurement.
type record struct {
	Timestamp string  `json:"timestamp"`
	Field1    float64 `json:"field1"`
	Field2    float64 `json:"field2"`
	Field3    float64 `json:"field3"`
}

// saveToFile writes records as a JSON array.
func saveToFile(filename string, records []model.Measurement) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	out := make([]record, len(records))
	for i, m := range records {
		out[i] = record{
			Timestamp: m.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Field1:    m.Values[model.Field1],
			Field2:    m.Values[model.Field2],
			Field3:    m.Values[model.Field3],
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
