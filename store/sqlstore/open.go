package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

// Open opens (creating if necessary) the SQLite database at path and
// migrates it to the latest schema. path is a filesystem path, or
// ":memory:" for an in-memory database; Open wraps it in a "file:" URI
// with its own query parameters, so a full sqlite DSN cannot be passed.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	// SQLite allows only one writer at a time; a single connection avoids
	// SQLITE_BUSY errors under concurrent worker processes and lets
	// busy_timeout do the waiting instead.
	sqlDB.SetMaxOpenConns(1)

	if err := migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.DB.Close()
}
