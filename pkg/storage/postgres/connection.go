package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver for local development

	"github.com/farmhand-io/farmhand/pkg/observability"
)

// Config holds database connection configuration
type Config struct {
	Driver      string
	URL         string
	MaxConns    int
	MinConns    int
	Timeout     time.Duration
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

// Connect opens a database connection, configures the pool, and
// verifies the connection with a ping.
func Connect(config Config) (*sql.DB, error) {
	driver := config.Driver
	if driver == "" {
		driver = "postgres"
	}

	db, err := sql.Open(driver, config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(config.MaxConns)
	db.SetMaxIdleConns(config.MinConns)
	db.SetConnMaxLifetime(config.MaxLifetime)
	db.SetConnMaxIdleTime(config.MaxIdleTime)

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// StartPoolStatsRoutine starts a background goroutine that exports
// connection pool statistics to the metrics registry until the context
// is cancelled.
func StartPoolStatsRoutine(ctx context.Context, db *sql.DB, metrics *observability.Metrics, interval time.Duration) {
	if interval == 0 {
		interval = 15 * time.Second
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				metrics.ObserveDBPool(db.Stats())
			case <-ctx.Done():
				return
			}
		}
	}()
}
