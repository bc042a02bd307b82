package job

import (
	"time"

	"github.com/google/uuid"
)

// Job represents a shell command managed by the queue, augmented with
// delivery state, retry and lock metadata.
//
// Id is an opaque, globally unique string: either client-supplied (for
// example "t1") or auto-generated as a canonical UUID string. It is
// intentionally typed as string rather than uuid.UUID so that
// client-supplied ids need not be valid UUIDs.
//
// CreatedAt is immutable. UpdatedAt is refreshed on every transition.
// NextRetryAt is set only for a scheduled retry (Pending with
// Attempts > 0). LockedBy/LockedAt are non-nil exactly when State is
// Processing.
//
// Job values returned by a Store are snapshots; see the package doc.
type Job struct {
	Id      string
	Command string

	Priority   Priority
	State      State
	Attempts   uint32
	MaxRetries uint32

	CreatedAt time.Time
	UpdatedAt time.Time

	NextRetryAt *time.Time
	LockedBy    *string
	LockedAt    *time.Time
}

// New creates a Job in the Pending state with a freshly generated id.
// CreatedAt and UpdatedAt are left zero; a store sets them on insert.
func New(command string, priority Priority, maxRetries uint32) *Job {
	return &Job{
		Id:         uuid.New().String(),
		Command:    command,
		Priority:   priority,
		State:      Pending,
		MaxRetries: maxRetries,
	}
}

// Locked reports whether the job is currently owned by a worker.
func (j *Job) Locked() bool {
	return j.LockedBy != nil
}
