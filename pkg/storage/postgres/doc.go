// Package postgres manages the relational database connection and
// schema migrations.
//
// The primary target is PostgreSQL via lib/pq. For local development
// the same code path can run against SQLite (mattn/go-sqlite3), which
// accepts the $N positional placeholders used throughout the queries;
// the migration DDL itself targets PostgreSQL.
//
// Migrations are plain versioned SQL strings contributed by the domain
// packages. Migrate merges the contributions, sorts by version, and
// applies anything newer than what schema_migrations records, one
// transaction per migration.
package postgres
