package sqlstore

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// migrate brings db up to the latest schema version. It is always safe
// to call against an existing database: goose tracks applied versions
// in its own table and only runs what is missing, which is how the
// locked_by/locked_at/next_retry_at columns get added in place on a
// database created before they existed.
func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrationFiles)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("sqlstore: set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return nil
}
