package repository

import (
	"database/sql"
	_ "embed"
	"fmt"
	"math"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
)

// Supported SQL dialects, as named in configuration.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// sqliteDriverName is go-sqlite3 with a stddev_pop aggregate registered on
// every connection, so both dialects share the same statements.
const sqliteDriverName = "sqlite3_analytics"

//go:embed sql/schema_postgres.sql
var schemaPostgres string

//go:embed sql/schema_sqlite.sql
var schemaSQLite string

func init() {
	sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterAggregator("stddev_pop", newStdDevPop, true)
		},
	})
	sqlx.BindDriver(sqliteDriverName, sqlx.QUESTION)
}

// dialect holds the driver name and schema for one SQL backend.
type dialect struct {
	name       string
	driverName string
	schema     string
}

func dialectFor(name string) (dialect, error) {
	switch name {
	case DriverPostgres:
		return dialect{name: DriverPostgres, driverName: "postgres", schema: schemaPostgres}, nil
	case DriverSQLite:
		return dialect{name: DriverSQLite, driverName: sqliteDriverName, schema: schemaSQLite}, nil
	default:
		return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, name)
	}
}

// valueExpr selects the column of the field bound to the first placeholder.
// The arms come from the Field enum; the requested name is always a bind
// parameter.
var valueExpr = func() string {
	var b strings.Builder
	b.WriteString("CASE CAST(? AS TEXT)")
	for _, f := range model.Fields() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %s", f.String(), f.Column())
	}
	b.WriteString(" END")
	return b.String()
}()

var (
	seriesSQL = `SELECT ts_ms, value FROM (
  SELECT id, ts_ms, ` + valueExpr + ` AS value
  FROM measurements
  WHERE ts_ms BETWEEN ? AND ?
) sel
WHERE value IS NOT NULL
ORDER BY ts_ms ASC, id ASC`

	summarySQL = `SELECT COUNT(value) AS n, AVG(value) AS mean, MIN(value) AS lo, MAX(value) AS hi, stddev_pop(value) AS sd FROM (
  SELECT ` + valueExpr + ` AS value
  FROM measurements
  WHERE ts_ms BETWEEN ? AND ?
) sel
WHERE value IS NOT NULL`

	insertSQL = func() string {
		cols := []string{"ts_ms"}
		for _, f := range model.Fields() {
			cols = append(cols, f.Column())
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
		return "INSERT INTO measurements (" + strings.Join(cols, ", ") + ") VALUES (" + marks + ")"
	}()

	resetSQL = `DELETE FROM measurements`
)

// stdDevPop is a streaming population standard deviation (Welford).
type stdDevPop struct {
	n    int64
	mean float64
	m2   float64
}

func newStdDevPop() *stdDevPop {
	return &stdDevPop{}
}

// Step accepts one value; NULLs and non-numeric values are skipped.
func (a *stdDevPop) Step(v interface{}) {
	var x float64
	switch t := v.(type) {
	case float64:
		x = t
	case int64:
		x = float64(t)
	default:
		return
	}
	a.n++
	d := x - a.mean
	a.mean += d / float64(a.n)
	a.m2 += d * (x - a.mean)
}

// Done returns the population standard deviation, 0 for an empty input.
func (a *stdDevPop) Done() float64 {
	if a.n == 0 {
		return 0
	}
	return math.Sqrt(a.m2 / float64(a.n))
}
