package scheduler

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/specialistvlad/gridwalk/internal/nodeid"
	"github.com/specialistvlad/gridwalk/internal/traversal"
)

// Task is the executable unit of a job.
type Task func(ctx context.Context) error

// JobDetail ties a job's identity, task and health together. It is
// immutable apart from the HealthState it points to.
type JobDetail struct {
	id     string
	name   string
	task   Task
	health *HealthState
}

// NewJob creates a job with a fresh UUID.
func NewJob(name string, task Task) (*JobDetail, error) {
	return NewJobWithID(uuid.NewString(), name, task)
}

// NewJobWithID creates a job with a caller-chosen id.
func NewJobWithID(id, name string, task Task) (*JobDetail, error) {
	if id == "" {
		return nil, errors.New("job id cannot be empty")
	}
	if task == nil {
		return nil, errors.New("job task cannot be nil")
	}
	return &JobDetail{id: id, name: name, task: task, health: &HealthState{}}, nil
}

// NewTraversalJob creates a job that traverses from root.
func NewTraversalJob(t *traversal.Traverser, root nodeid.Ref) (*JobDetail, error) {
	if t == nil {
		return nil, errors.New("traversal job requires a traverser")
	}
	return NewJob(root.String(), func(ctx context.Context) error {
		return t.Traverse(ctx, root)
	})
}

// NewGraphJob creates a single job that traverses from every root in one
// walk.
func NewGraphJob(t *traversal.Traverser, roots []nodeid.Ref) (*JobDetail, error) {
	if t == nil {
		return nil, errors.New("graph job requires a traverser")
	}
	roots = append([]nodeid.Ref(nil), roots...)
	return NewJob("graph", func(ctx context.Context) error {
		return t.TraverseAll(ctx, roots)
	})
}

// JobsForSources creates one traversal job per source.
func JobsForSources(t *traversal.Traverser, sources []nodeid.Ref) ([]*JobDetail, error) {
	jobs := make([]*JobDetail, 0, len(sources))
	for _, src := range sources {
		job, err := NewTraversalJob(t, src)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// ID returns the job's unique identifier.
func (j *JobDetail) ID() string { return j.id }

// Name returns the job's display name.
func (j *JobDetail) Name() string { return j.name }

// Health returns the job's HealthState.
func (j *JobDetail) Health() *HealthState { return j.health }
