// Package registry holds the in-memory job map shared by every scrape job.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/JakeFAU/realtime-video-scraper/internal/scraper"
)

// ErrJobNotFound is returned when a job id is unknown to the registry.
var ErrJobNotFound = errors.New("job not found")

// Registry is the process-wide map from job id to job state. A single mutex
// serializes every operation, so snapshots never interleave a status from one
// write with a result from another. Entries live for the process lifetime.
type Registry struct {
	mu    sync.Mutex
	jobs  map[string]scraper.Job
	idGen scraper.IDGenerator
}

// New constructs an empty Registry using idGen for job ids.
func New(idGen scraper.IDGenerator) *Registry {
	return &Registry{
		jobs:  make(map[string]scraper.Job),
		idGen: idGen,
	}
}

// Create allocates a fresh job in the starting state and returns it.
func (r *Registry) Create() (scraper.Job, error) {
	id, err := r.idGen.NewID()
	if err != nil {
		return scraper.Job{}, fmt.Errorf("new job id: %w", err)
	}
	job := scraper.Job{ID: id, Status: scraper.JobStatusStarting}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = job
	return job, nil
}

// Get returns a snapshot of the job, or ErrJobNotFound.
func (r *Registry) Get(id string) (scraper.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return scraper.Job{}, ErrJobNotFound
	}
	return job, nil
}

// SetStatus overwrites the job status, leaving any recorded result in place.
func (r *Registry) SetStatus(id string, status scraper.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Status = status
	r.jobs[id] = job
	return nil
}

// SetTerminal overwrites the job status and records the terminal result in
// the same critical section.
func (r *Registry) SetTerminal(id string, status scraper.JobStatus, result string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Status = status
	job.Result = &result
	r.jobs[id] = job
	return nil
}
