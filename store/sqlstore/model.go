package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/arvindsundar/jobq/job"
)

type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`

	Id      string `bun:"id,pk"`
	Command string `bun:"command,notnull"`

	Priority   string `bun:"priority,notnull,default:'medium'"`
	State      string `bun:"state,notnull"`
	Attempts   uint32 `bun:"attempts,notnull,default:0"`
	MaxRetries uint32 `bun:"max_retries,notnull,default:3"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	NextRetryAt *time.Time `bun:"next_retry_at,nullzero"`
	LockedBy    *string    `bun:"locked_by,nullzero"`
	LockedAt    *time.Time `bun:"locked_at,nullzero"`
}

func (m *jobModel) toJob() *job.Job {
	state, _ := job.ParseState(m.State)
	priority, _ := job.ParsePriority(m.Priority)
	return &job.Job{
		Id:          m.Id,
		Command:     m.Command,
		Priority:    priority,
		State:       state,
		Attempts:    m.Attempts,
		MaxRetries:  m.MaxRetries,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		NextRetryAt: m.NextRetryAt,
		LockedBy:    m.LockedBy,
		LockedAt:    m.LockedAt,
	}
}

func fromJob(j *job.Job) *jobModel {
	return &jobModel{
		Id:          j.Id,
		Command:     j.Command,
		Priority:    j.Priority.String(),
		State:       j.State.String(),
		Attempts:    j.Attempts,
		MaxRetries:  j.MaxRetries,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		NextRetryAt: j.NextRetryAt,
		LockedBy:    j.LockedBy,
		LockedAt:    j.LockedAt,
	}
}

type configModel struct {
	bun.BaseModel `bun:"table:config"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}
