package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"paperchat/internal/models"
	"paperchat/internal/util"

	"github.com/google/uuid"
)

// Store persists job records. Implementations must be safe for concurrent
// readers; the registry serializes all writers.
type Store interface {
	Insert(ctx context.Context, j models.Job) error
	Update(ctx context.Context, j models.Job) error
	Get(ctx context.Context, jobID string) (models.Job, error)
	// FindActiveByFingerprint returns the non-terminal job with the given
	// fingerprint, or util.ErrNotFound.
	FindActiveByFingerprint(ctx context.Context, fp string) (models.Job, error)
}

// validTransitions makes illegal state changes (done -> running, failed ->
// anything) explicitly rejected rather than silently applied.
var validTransitions = map[models.JobState][]models.JobState{
	models.JobSubmitted: {models.JobRunning, models.JobFailed},
	models.JobRunning:   {models.JobDone, models.JobFailed},
	models.JobDone:      {},
	models.JobFailed:    {},
}

func canTransition(from, to models.JobState) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Fingerprint derives the dedup key for a submission from the job kind, the
// subject, and a hash of the submitted content.
func Fingerprint(kind models.JobKind, subjectID, contentHash string) string {
	return util.SHA256Hex([]byte(string(kind) + "|" + subjectID + "|" + contentHash))
}

// Registry is the shared job state machine. A single mutex serializes every
// mutation, which also makes the fingerprint check-then-insert in Submit
// atomic. Poll is read-only and never blocks on running jobs.
type Registry struct {
	mu    sync.Mutex
	store Store
}

func NewRegistry(store Store) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Registry{store: store}
}

// Submit creates a new job, unless a non-terminal job with the same
// fingerprint already exists, in which case that job is returned — two
// concurrent submissions for the same subject and content share one job.
// A finished or failed job never blocks resubmission.
func (r *Registry) Submit(ctx context.Context, kind models.JobKind, subjectID, contentHash string) (models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fp := Fingerprint(kind, subjectID, contentHash)
	if existing, err := r.store.FindActiveByFingerprint(ctx, fp); err == nil {
		return existing, nil
	}

	now := time.Now().UTC()
	j := models.Job{
		JobID:       uuid.NewString(),
		Kind:        kind,
		SubjectID:   subjectID,
		State:       models.JobSubmitted,
		Fingerprint: fp,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.store.Insert(ctx, j); err != nil {
		return models.Job{}, fmt.Errorf("insert job: %w", err)
	}
	return j, nil
}

// Start moves a job from submitted to running when the worker picks it up.
func (r *Registry) Start(ctx context.Context, jobID string) error {
	return r.mutate(ctx, jobID, func(j *models.Job) error {
		if !canTransition(j.State, models.JobRunning) {
			return fmt.Errorf("job %s: cannot start from state %s", jobID, j.State)
		}
		j.State = models.JobRunning
		return nil
	})
}

// Advance records step progress. It is only valid while running, and a
// regressive percentage is clamped so progress never decreases.
func (r *Registry) Advance(ctx context.Context, jobID, step string, progressPercent int) error {
	return r.mutate(ctx, jobID, func(j *models.Job) error {
		if j.State != models.JobRunning {
			return fmt.Errorf("job %s: advance in state %s", jobID, j.State)
		}
		if progressPercent > 100 {
			progressPercent = 100
		}
		if progressPercent > j.ProgressPercent {
			j.ProgressPercent = progressPercent
		}
		j.CurrentStep = step
		return nil
	})
}

func (r *Registry) Complete(ctx context.Context, jobID, result string) error {
	return r.mutate(ctx, jobID, func(j *models.Job) error {
		if !canTransition(j.State, models.JobDone) {
			return fmt.Errorf("job %s: cannot complete from state %s", jobID, j.State)
		}
		j.State = models.JobDone
		j.ProgressPercent = 100
		j.CurrentStep = "done"
		j.Result = result
		return nil
	})
}

// Fail is terminal: there is no internal retry. Callers wanting a retry
// submit again, which the fingerprint dedup allows once this job is terminal.
func (r *Registry) Fail(ctx context.Context, jobID, errMsg string) error {
	return r.mutate(ctx, jobID, func(j *models.Job) error {
		if !canTransition(j.State, models.JobFailed) {
			return fmt.Errorf("job %s: cannot fail from state %s", jobID, j.State)
		}
		j.State = models.JobFailed
		j.Error = errMsg
		return nil
	})
}

// Poll returns a snapshot of the job record.
func (r *Registry) Poll(ctx context.Context, jobID string) (models.Job, error) {
	return r.store.Get(ctx, jobID)
}

func (r *Registry) mutate(ctx context.Context, jobID string, fn func(*models.Job) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, err := r.store.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if err := fn(&j); err != nil {
		return err
	}
	j.UpdatedAt = time.Now().UTC()
	if err := r.store.Update(ctx, j); err != nil {
		return fmt.Errorf("update job %s: %w", jobID, err)
	}
	return nil
}
