package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // sqlite driver
)

// Config holds configuration for the sqlite-backed stores.
type Config struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/typesvc.db"`

	// QueryTimeout bounds every store call, in seconds, so handlers fail
	// fast instead of hanging when storage is unreachable
	QueryTimeout int64 `env:"QUERY_TIMEOUT" default:"3"`
}

// Timeout returns the per-query timeout as a duration.
func (cfg Config) Timeout() time.Duration {
	return time.Duration(cfg.QueryTimeout * int64(time.Second))
}

// Open opens the shared SQLite database handle. The handle is created once
// at process start and passed by reference into every repository; there is
// no ambient global connection.
func Open(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return db, nil
}
