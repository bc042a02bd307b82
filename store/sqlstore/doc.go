// Package sqlstore implements store.Store on top of SQLite, using bun
// as the query builder and goose for schema migrations.
//
// Open returns a ready-to-use store.Store backed by a single SQLite
// file (or an in-memory database for tests). Concurrent writers are
// serialized by SQLite itself; Open configures the connection pool
// accordingly.
package sqlstore
