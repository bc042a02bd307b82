// Package jobq implements a durable, multi-worker background job queue.
//
// # Overview
//
// jobq models a durable queue of shell-command jobs with explicit state
// transitions. It separates the job's data (job.Job) from storage
// (store.Store) and process orchestration (Worker, Supervisor), so the
// queue logic is not coupled to any particular database.
//
// # State Machine
//
// Jobs follow this lifecycle:
//
//	Pending    -> Processing
//	Processing -> Completed
//	Processing -> Pending    (retry, via the retry policy)
//	Processing -> Dead
//
// Completed and Dead are terminal. Dead jobs may be revived by an
// operator (dlq retry), returning them to Pending with Attempts reset.
//
// # Retry Policy
//
// DecideAfterFailure maps a failed attempt to either a scheduled retry
// with an exponentially growing delay, or death to the DLQ once the
// job's MaxRetries budget is exhausted. See retry.go.
//
// # Worker
//
// A Worker owns one OS process. It repeatedly claims the next eligible
// job from the store, executes its command through a system shell with
// a wall-clock timeout, and records the outcome. A Worker does not
// guarantee exactly-once execution: a crash mid-execution leaves the
// job Processing until an unstick sweep reclaims it.
//
// # Supervisor
//
// A Supervisor spawns a fixed number of worker processes, forwards
// shutdown signals to them, and reaps them within a grace period.
//
// # Concurrency Model
//
// Concurrency exists only at process and subprocess granularity: each
// Worker's main loop is single-threaded and sequential. Exactly one
// worker processes a given job at any moment because Store.ClaimNextJob
// is a single atomic store transaction.
//
// # Storage Expectations
//
// Implementations of store.Store must provide atomic claim semantics,
// durable writes, and a consistent read snapshot for list/count
// operations. The bundled store/sqlstore package implements this over
// SQLite via bun.
package jobq
