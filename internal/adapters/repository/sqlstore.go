package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
	"github.com/nur12play/Analiticpplatform/pkg/metrics"
)

// SQLStore implements Store on Postgres or SQLite through sqlx.
// Timestamps are stored as Unix milliseconds; ties on timestamp are
// ordered by the auto-increment id, i.e. insertion order.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect

	seriesSQL  string
	summarySQL string
	insertSQL  string

	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	autoMigrate     bool
}

// Open connects to the database named by driver ("postgres" or "sqlite"),
// applies pool settings and, when enabled, creates the schema.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s: dsn is required", driver)
	}

	db, err := sqlx.ConnectContext(ctx, d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	s := newSQLStore(db, d)
	for _, opt := range opts {
		opt(s)
	}
	// Every connection to an in-memory SQLite database gets its own database,
	// so the single connection must never be closed or recycled.
	if d.name == DriverSQLite && strings.Contains(dsn, ":memory:") {
		s.maxOpenConns = 1
		s.maxIdleConns = 1
		s.connMaxLifetime = 0
	}
	s.applyPool()

	if s.autoMigrate {
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewSQLStore wraps an existing handle. driver selects the dialect.
func NewSQLStore(db *sqlx.DB, driver string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return newSQLStore(db, d), nil
}

func newSQLStore(db *sqlx.DB, d dialect) *SQLStore {
	return &SQLStore{
		db:           db,
		dialect:      d,
		seriesSQL:    db.Rebind(seriesSQL),
		summarySQL:   db.Rebind(summarySQL),
		insertSQL:    db.Rebind(insertSQL),
		maxIdleConns: -1,
	}
}

func (s *SQLStore) applyPool() {
	if s.maxOpenConns > 0 {
		s.db.SetMaxOpenConns(s.maxOpenConns)
	}
	if s.maxIdleConns >= 0 {
		s.db.SetMaxIdleConns(s.maxIdleConns)
	}
	s.db.SetConnMaxLifetime(s.connMaxLifetime)
}

// Migrate creates the measurements table and its index if missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("migrate %s schema: %w", s.dialect.name, err)
	}
	return nil
}

// Series returns the defined values of field inside window.
func (s *SQLStore) Series(ctx context.Context, field model.Field, window model.Window) ([]model.Point, error) {
	const op = "series"
	start := time.Now()
	defer observe(op, s.dialect.name, start)

	rows, err := s.db.QueryxContext(ctx, s.seriesSQL, field.String(), window.Start.UnixMilli(), window.End.UnixMilli())
	if err != nil {
		return nil, s.fail(op, err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Point
	for rows.Next() {
		var (
			tsMS  int64
			value float64
		)
		if err := rows.Scan(&tsMS, &value); err != nil {
			return nil, s.fail(op, err)
		}
		out = append(out, model.Point{Timestamp: time.UnixMilli(tsMS).UTC(), Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail(op, err)
	}
	metrics.RecordRepositoryRowsReturned(op, s.dialect.name, len(out))
	return out, nil
}

// summaryRow is the single row produced by summarySQL.
type summaryRow struct {
	Count  int64           `db:"n"`
	Avg    sql.NullFloat64 `db:"mean"`
	Min    sql.NullFloat64 `db:"lo"`
	Max    sql.NullFloat64 `db:"hi"`
	StdDev sql.NullFloat64 `db:"sd"`
}

// Summarize runs one aggregate statement over the defined values of field.
func (s *SQLStore) Summarize(ctx context.Context, field model.Field, window *model.Window) (model.Summary, error) {
	const op = "summarize"
	start := time.Now()
	defer observe(op, s.dialect.name, start)

	from, to := int64(math.MinInt64), int64(math.MaxInt64)
	if window != nil {
		from, to = window.Start.UnixMilli(), window.End.UnixMilli()
	}

	var row summaryRow
	if err := s.db.GetContext(ctx, &row, s.summarySQL, field.String(), from, to); err != nil {
		return model.Summary{}, s.fail(op, err)
	}
	if row.Count == 0 {
		return model.Summary{}, nil
	}
	return model.Summary{
		Count:  row.Count,
		Avg:    row.Avg.Float64,
		Min:    row.Min.Float64,
		Max:    row.Max.Float64,
		StdDev: row.StdDev.Float64,
	}, nil
}

// Insert writes measurements in one transaction.
func (s *SQLStore) Insert(ctx context.Context, ms []model.Measurement) (err error) {
	const op = "insert"
	for i, m := range ms {
		if verr := m.Validate(); verr != nil {
			return fmt.Errorf("%w: record %d: %w", ErrInvalidMeasurement, i, verr)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return s.fail(op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PreparexContext(ctx, s.insertSQL)
	if err != nil {
		return s.fail(op, err)
	}
	defer func() { _ = stmt.Close() }()

	fields := model.Fields()
	for _, m := range ms {
		args := make([]any, 0, len(fields)+1)
		args = append(args, m.Timestamp.UnixMilli())
		for _, f := range fields {
			if v, ok := m.Value(f); ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return s.fail(op, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return s.fail(op, err)
	}
	return nil
}

// Reset deletes every measurement.
func (s *SQLStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, resetSQL); err != nil {
		return s.fail("reset", err)
	}
	return nil
}

// Ping verifies connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) fail(op string, err error) error {
	metrics.RecordRepositoryError(op, s.dialect.name)
	return fmt.Errorf("%s %s: %w", s.dialect.name, op, err)
}

var _ Store = (*SQLStore)(nil)
