package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/modaworks/curator/internal/classify"
	"github.com/modaworks/curator/internal/models"
)

// JobStore is an in-memory registry of classification jobs.
type JobStore struct {
	jobs map[string]*models.Job
	mu   sync.RWMutex
}

func New() *JobStore {
	return &JobStore{
		jobs: make(map[string]*models.Job),
	}
}

func (s *JobStore) Get(jobID string) (*models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return nil, false
	}
	copied := *job
	return &copied, true
}

func (s *JobStore) Set(job *models.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *job
	s.jobs[job.ID] = &copied
}

// List returns all jobs, newest first.
func (s *JobStore) List() []*models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		copied := *job
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

// SetStatus transitions a job's lifecycle state, recording the error message
// for failed jobs.
func (s *JobStore) SetStatus(jobID string, status models.JobStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return
	}
	job.Status = status
	job.Error = errMsg
	job.UpdatedAt = time.Now()
}

// AttachResult stores the finished run on a job.
func (s *JobStore) AttachResult(jobID string, result *classify.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return
	}
	job.Result = result
	job.UpdatedAt = time.Now()
}

func (s *JobStore) Delete(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}
