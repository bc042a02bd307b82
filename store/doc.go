// Package store defines the durable persistence contract for jobq: the
// Store interface plus the sentinel errors its implementations return.
//
// Store is the one place that owns job and config data. It exposes the
// atomic claim-next-ready-job primitive the scheduler relies on, along
// with the admin-facing CRUD and counting operations the CLI surfaces.
//
// The bundled SQL implementation lives in the sqlstore subpackage; Store
// itself is storage-agnostic.
package store
