// Package job defines the stateful representation of a unit of work
// managed by the queue: a shell command plus its lifecycle, retry and
// lock metadata.
//
// Unlike a plain task description, a Job carries everything the store
// and worker need to drive its state machine: State, Attempts,
// MaxRetries, NextRetryAt and the lock fields LockedBy/LockedAt.
//
// Job values returned by a store are snapshots. Mutating fields on a
// returned Job does not change persisted state; transitions must go
// through the store's operations.
package job
