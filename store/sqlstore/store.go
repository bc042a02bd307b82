package sqlstore

import (
	"context"
	gosql "database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/arvindsundar/jobq/job"
	"github.com/arvindsundar/jobq/store"
)

// priorityOrder is a SQL CASE expression giving each priority a sort
// key; plain string ordering on "high"/"medium"/"low" would not match
// the claim order the scheduler requires.
const priorityOrder = "CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 WHEN 'low' THEN 2 ELSE 1 END"

// Store implements store.Store over a SQLite database via bun.
type Store struct {
	db *bun.DB
}

var _ store.Store = (*Store)(nil)

func (s *Store) CreateJob(ctx context.Context, j *job.Job) error {
	now := time.Now()
	j.CreatedAt = now
	j.UpdatedAt = now
	model := fromJob(j)
	_, err := s.db.NewInsert().Model(model).Exec(ctx)
	if err != nil && isUniqueViolation(err) {
		return store.ErrDuplicateID
	}
	return err
}

func (s *Store) GetJob(ctx context.Context, id string) (*job.Job, error) {
	var m jobModel
	err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, gosql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return m.toJob(), nil
}

func (s *Store) UpdateJob(ctx context.Context, id string, patch store.Patch) error {
	now := time.Now()
	q := s.db.NewUpdate().Model((*jobModel)(nil)).Set("updated_at = ?", now)
	if patch.State != nil {
		q.Set("state = ?", patch.State.String())
	}
	if patch.Attempts != nil {
		q.Set("attempts = ?", *patch.Attempts)
	}
	if patch.NextRetryAt.Set {
		q.Set("next_retry_at = ?", patch.NextRetryAt.Value)
	}
	if patch.LockedBy.Set {
		q.Set("locked_by = ?", patch.LockedBy.Value)
	}
	if patch.LockedAt.Set {
		q.Set("locked_at = ?", patch.LockedAt.Value)
	}
	res, err := q.Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if !isAffected(res) {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) ListJobs(ctx context.Context, state job.State, limit int) ([]*job.Job, error) {
	var models []*jobModel
	q := s.db.NewSelect().Model(&models).Order("created_at ASC")
	if state != job.Unknown {
		q.Where("state = ?", state.String())
	}
	if limit > 0 {
		q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	jobs := make([]*job.Job, len(models))
	for i, m := range models {
		jobs[i] = m.toJob()
	}
	return jobs, nil
}

// ClaimNextJob atomically claims the highest-priority eligible job
// using a single UPDATE ... WHERE id IN (subquery) RETURNING
// statement, following the same compare-and-swap shape as a classic
// SQL job queue puller: the subquery decides which row is eligible,
// the outer UPDATE is what actually grants ownership, and no two
// callers can ever select the same row for ownership between the two.
func (s *Store) ClaimNextJob(ctx context.Context, workerID string, now time.Time) (*job.Job, error) {
	sub := s.db.NewSelect().
		Model((*jobModel)(nil)).
		Column("id").
		Where("state = ?", job.Pending.String()).
		WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.
				Where("next_retry_at IS NULL").
				WhereOr("next_retry_at <= ?", now)
		}).
		OrderExpr(priorityOrder + " ASC").
		Order("created_at ASC").
		Order("id ASC").
		Limit(1)

	var models []*jobModel
	err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Processing.String()).
		Set("locked_by = ?", workerID).
		Set("locked_at = ?", now).
		Set("next_retry_at = NULL").
		Set("updated_at = ?", now).
		Where("id IN (?)", sub).
		Returning("*").
		Scan(ctx, &models)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	return models[0].toJob(), nil
}

func (s *Store) JobCounts(ctx context.Context) (map[job.State]int, error) {
	counts := make(map[job.State]int)
	for _, st := range job.States() {
		counts[st] = 0
	}
	var rows []struct {
		State string `bun:"state"`
		Count int    `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*jobModel)(nil)).
		ColumnExpr("state").
		ColumnExpr("count(*) AS count").
		Group("state").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		st, err := job.ParseState(r.State)
		if err != nil {
			continue
		}
		counts[st] = r.Count
	}
	return counts, nil
}

func (s *Store) PriorityCounts(ctx context.Context) (map[job.Priority]int, error) {
	counts := make(map[job.Priority]int)
	for _, p := range job.Priorities() {
		counts[p] = 0
	}
	var rows []struct {
		Priority string `bun:"priority"`
		Count    int    `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*jobModel)(nil)).
		ColumnExpr("priority").
		ColumnExpr("count(*) AS count").
		Where("state IN (?, ?)", job.Pending.String(), job.Processing.String()).
		Group("priority").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		p, err := job.ParsePriority(r.Priority)
		if err != nil {
			continue
		}
		counts[p] = r.Count
	}
	return counts, nil
}

func (s *Store) SetConfig(ctx context.Context, key, value string) error {
	_, err := s.db.NewInsert().
		Model(&configModel{Key: key, Value: value}).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}

func (s *Store) GetConfig(ctx context.Context, key, def string) (string, error) {
	var m configModel
	err := s.db.NewSelect().Model(&m).Where("key = ?", key).Scan(ctx)
	if err != nil {
		if errors.Is(err, gosql.ErrNoRows) {
			return def, nil
		}
		return "", err
	}
	return m.Value, nil
}

func (s *Store) ListConfig(ctx context.Context) (map[string]string, error) {
	var models []*configModel
	if err := s.db.NewSelect().Model(&models).Scan(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(models))
	for _, m := range models {
		out[m.Key] = m.Value
	}
	return out, nil
}

// Unstick reclaims jobs left Processing by a worker that crashed
// before recording an outcome. Attempts is left untouched: an unstick
// is not a failed attempt, it is recovery from one that never
// finished.
func (s *Store) Unstick(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("state = ?", job.Pending.String()).
		Set("locked_by = NULL").
		Set("locked_at = NULL").
		Set("updated_at = ?", time.Now()).
		Where("state = ?", job.Processing.String()).
		Where("locked_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
