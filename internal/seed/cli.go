package seed

import "os"

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`Measurements Seed Tool
======================

Wipes the configured store and loads a synthetic series: one record every
step, starting at -start, with field1 in [17,30), field2 in [35,85) and
field3 in [300,650), each rounded to 2 decimals.

Usage:
  go run ./cmd/seed [options]

Options:
  -driver string
        Storage driver: sqlite, postgres or memory (default from ANALYTICS_STORAGE_DRIVER)
  -dsn string
        Connection string (default from ANALYTICS_DATABASE_DSN)
  -start string
        First day, YYYY-MM-DD (default "2025-01-01")
  -days int
        Number of days to generate (default 7)
  -step duration
        Spacing between records (default 30m)
  -seed uint
        RNG seed, 0 for random (default 0)
  -batch int
        Records per insert (default 100)
  -workers int
        Concurrent inserts (default 2)
  -keep
        Do not wipe the store first
  -output string
        Also write the generated records to this JSON file
  -help
        Show this help message

Examples:
  # Default week of data into the configured store
  go run ./cmd/seed

  # Reproducible month into Postgres
  go run ./cmd/seed -driver postgres -dsn "postgres://localhost/analytics?sslmode=disable" -days 30 -seed 42
`)
}
