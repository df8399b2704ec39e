package storage

import (
	"context"
	"errors"
	"fmt"

	"paperchat/internal/models"
	"paperchat/internal/util"

	"github.com/jackc/pgx/v5"
)

// JobRepo persists job records for the pipeline registry. Both the api and
// worker processes read and write the same rows, so polling works no matter
// which process mutated the job last.
type JobRepo struct {
	db *DB
}

func NewJobRepo(db *DB) *JobRepo {
	return &JobRepo{db: db}
}

func (r *JobRepo) Insert(ctx context.Context, j models.Job) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO jobs (job_id, kind, subject_id, state, progress_percent, current_step, error, fingerprint, result, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''), $8, NULLIF($9,''), $10, $11)`,
		j.JobID, j.Kind, j.SubjectID, j.State, j.ProgressPercent, j.CurrentStep, j.Error, j.Fingerprint, j.Result, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepo) Update(ctx context.Context, j models.Job) error {
	tag, err := r.db.Pool.Exec(ctx, `
UPDATE jobs
SET state=$2, progress_percent=$3, current_step=NULLIF($4,''), error=NULLIF($5,''), result=NULLIF($6,''), updated_at=$7
WHERE job_id=$1`,
		j.JobID, j.State, j.ProgressPercent, j.CurrentStep, j.Error, j.Result, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", j.JobID, util.ErrNotFound)
	}
	return nil
}

func (r *JobRepo) Get(ctx context.Context, jobID string) (models.Job, error) {
	var j models.Job
	err := r.db.Pool.QueryRow(ctx, `
SELECT job_id, kind, subject_id, state, progress_percent, COALESCE(current_step,''), COALESCE(error,''), fingerprint, COALESCE(result,''), created_at, updated_at
FROM jobs
WHERE job_id=$1`, jobID).
		Scan(&j.JobID, &j.Kind, &j.SubjectID, &j.State, &j.ProgressPercent, &j.CurrentStep, &j.Error, &j.Fingerprint, &j.Result, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, fmt.Errorf("job %s: %w", jobID, util.ErrNotFound)
	}
	if err != nil {
		return models.Job{}, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (r *JobRepo) FindActiveByFingerprint(ctx context.Context, fp string) (models.Job, error) {
	var j models.Job
	err := r.db.Pool.QueryRow(ctx, `
SELECT job_id, kind, subject_id, state, progress_percent, COALESCE(current_step,''), COALESCE(error,''), fingerprint, COALESCE(result,''), created_at, updated_at
FROM jobs
WHERE fingerprint=$1 AND state NOT IN ('done','failed')
ORDER BY created_at ASC
LIMIT 1`, fp).
		Scan(&j.JobID, &j.Kind, &j.SubjectID, &j.State, &j.ProgressPercent, &j.CurrentStep, &j.Error, &j.Fingerprint, &j.Result, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, util.ErrNotFound
	}
	if err != nil {
		return models.Job{}, fmt.Errorf("find job by fingerprint: %w", err)
	}
	return j, nil
}
