package store

import (
	"context"
	"errors"
	"time"

	"github.com/arvindsundar/jobq/job"
)

var (
	// ErrDuplicateID is returned by CreateJob when a job with the same
	// id already exists.
	ErrDuplicateID = errors.New("job id already exists")

	// ErrNotFound is returned when a job id has no matching row.
	ErrNotFound = errors.New("job not found")

	// ErrInvalidState is returned when an operation requires the job to
	// be in a specific state (for example, dlq retry requires Dead) and
	// it is not.
	ErrInvalidState = errors.New("job is not in the required state")
)

// NullTime represents a nullable time.Time field in a Patch. Set is
// false means "leave this field untouched"; Set is true with a nil
// Value means "clear this field to NULL".
type NullTime struct {
	Set   bool
	Value *time.Time
}

// NullString represents a nullable string field in a Patch, with the
// same Set semantics as NullTime.
type NullString struct {
	Set   bool
	Value *string
}

// Patch describes a field-level, partial update to a Job. Only non-nil
// (or Set) fields are applied; UpdatedAt is always refreshed to the
// current time by the store regardless of which fields are touched.
type Patch struct {
	State       *job.State
	Attempts    *uint32
	NextRetryAt NullTime
	LockedBy    NullString
	LockedAt    NullTime
}

// ClearLock returns a Patch fragment that clears the lock fields
// (LockedBy, LockedAt), used by every terminal or retry transition. It
// leaves NextRetryAt untouched; callers set that field themselves.
func ClearLock() Patch {
	return Patch{
		LockedBy: NullString{Set: true},
		LockedAt: NullTime{Set: true},
	}
}

// Store is the durable persistence contract for jobq. All operations
// are serializable under concurrent access from multiple OS processes:
// CreateJob, UpdateJob and ClaimNextJob execute inside a write
// transaction; GetJob, ListJobs and the count operations observe a
// consistent snapshot.
type Store interface {
	// CreateJob inserts a new job in the Pending state. Returns
	// ErrDuplicateID if j.Id already exists.
	CreateJob(ctx context.Context, j *job.Job) error

	// GetJob returns the job with the given id, or ErrNotFound.
	GetJob(ctx context.Context, id string) (*job.Job, error)

	// UpdateJob applies patch to the job with the given id and refreshes
	// UpdatedAt. Returns ErrNotFound if no such job exists.
	UpdateJob(ctx context.Context, id string, patch Patch) error

	// ListJobs returns jobs ordered by CreatedAt ascending, optionally
	// filtered by state. limit <= 0 means no limit.
	ListJobs(ctx context.Context, state job.State, limit int) ([]*job.Job, error)

	// ClaimNextJob atomically selects the eligible job that comes first
	// by priority (High first), then CreatedAt ascending, then Id
	// ascending, marks it Processing under workerID, and returns it.
	// Returns (nil, nil) if no job is eligible.
	ClaimNextJob(ctx context.Context, workerID string, now time.Time) (*job.Job, error)

	// JobCounts returns the count of jobs in each state, including
	// states with zero jobs.
	JobCounts(ctx context.Context) (map[job.State]int, error)

	// PriorityCounts returns the count, by priority, of jobs currently
	// in Pending or Processing.
	PriorityCounts(ctx context.Context) (map[job.Priority]int, error)

	// SetConfig stores a configuration value.
	SetConfig(ctx context.Context, key, value string) error

	// GetConfig returns the configuration value for key, or def if unset.
	GetConfig(ctx context.Context, key, def string) (string, error)

	// ListConfig returns every stored configuration key/value pair.
	ListConfig(ctx context.Context) (map[string]string, error)

	// Unstick returns every Processing job whose LockedAt is older than
	// olderThan back to Pending, preserving Attempts. It is the
	// operator-invokable remediation for a worker that crashed
	// mid-execution. It returns the number of jobs reclaimed.
	Unstick(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Config keys recognized by the core retry policy. Unknown keys may
// still be stored; they are simply not read by DecideAfterFailure's
// caller.
const (
	ConfigMaxRetries           = "max-retries"
	ConfigBackoffBase          = "backoff-base"
	ConfigBackoffInitialDelay  = "backoff-initial-delay"
	DefaultMaxRetries          = "3"
	DefaultBackoffBase         = "2"
	DefaultBackoffInitialDelay = "1"
)
