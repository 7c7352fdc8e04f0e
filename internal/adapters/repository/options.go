package repository

import "time"

// Option applies a configuration option to a SQLStore.
type Option func(*SQLStore)

// WithMaxOpenConns caps the connection pool size.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}

// WithMaxIdleConns sets how many idle connections are retained.
func WithMaxIdleConns(n int) Option {
	return func(s *SQLStore) {
		if n >= 0 {
			s.maxIdleConns = n
		}
	}
}

// WithConnMaxLifetime bounds how long a pooled connection is reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(s *SQLStore) {
		if d > 0 {
			s.connMaxLifetime = d
		}
	}
}

// WithAutoMigrate creates the schema on Open when enabled.
func WithAutoMigrate(enabled bool) Option {
	return func(s *SQLStore) {
		s.autoMigrate = enabled
	}
}
