package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/farmhand-io/farmhand/pkg/observability"
)

// Migration represents a versioned schema migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrate applies all pending migrations in version order. Each domain
// package contributes its own slice; versions must be unique across
// contributors.
func Migrate(ctx context.Context, db *sql.DB, logger *observability.Logger, migrations ...[]Migration) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	var all []Migration
	for _, group := range migrations {
		all = append(all, group...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Version < all[j].Version })

	seen := make(map[int]string, len(all))
	for _, m := range all {
		if prev, ok := seen[m.Version]; ok {
			return fmt.Errorf("duplicate migration version %d (%q and %q)", m.Version, prev, m.Description)
		}
		seen[m.Version] = m.Description
	}

	for _, migration := range all {
		if applied[migration.Version] {
			continue
		}

		logger.WithFields(map[string]interface{}{
			"version":     migration.Version,
			"description": migration.Description,
		}).Info("Running migration")

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to start transaction: %w", err)
		}

		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, description) VALUES ($1, $2)",
			migration.Version, migration.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}
