package jobs

import (
	"context"
	"fmt"
	"sync"

	"paperchat/internal/models"
	"paperchat/internal/util"
)

// MemoryStore backs the registry when no database is configured; it is also
// what the tests run against.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]models.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: map[string]models.Job{}}
}

func (s *MemoryStore) Insert(ctx context.Context, j models.Job) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.JobID]; ok {
		return fmt.Errorf("job %s already exists", j.JobID)
	}
	s.jobs[j.JobID] = j
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, j models.Job) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[j.JobID]; !ok {
		return fmt.Errorf("job %s: %w", j.JobID, util.ErrNotFound)
	}
	s.jobs[j.JobID] = j
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, jobID string) (models.Job, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return models.Job{}, fmt.Errorf("job %s: %w", jobID, util.ErrNotFound)
	}
	return j, nil
}

func (s *MemoryStore) FindActiveByFingerprint(ctx context.Context, fp string) (models.Job, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, j := range s.jobs {
		if j.Fingerprint == fp && j.State != models.JobDone && j.State != models.JobFailed {
			return j, nil
		}
	}
	return models.Job{}, util.ErrNotFound
}
