package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/graph"
	"github.com/specialistvlad/gridwalk/internal/workerpool"
	"golang.org/x/sync/errgroup"
)

// JobScheduler registers jobs, runs them concurrently and tracks their
// health.
type JobScheduler struct {
	observer Observer
	pool     *workerpool.Pool

	mu      sync.Mutex
	jobs    map[string]*JobDetail
	order   []string
	running bool
	closed  bool
}

// Option configures a JobScheduler.
type Option func(*JobScheduler)

// WithObserver reports job events to o.
func WithObserver(o Observer) Option {
	return func(s *JobScheduler) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithPool hands the worker pool to the scheduler. RunAllJobs refuses to
// start on a closed pool and Cleanup closes it.
func WithPool(p *workerpool.Pool) Option {
	return func(s *JobScheduler) {
		s.pool = p
	}
}

// New creates an empty scheduler.
func New(opts ...Option) *JobScheduler {
	s := &JobScheduler{
		observer: NopObserver{},
		jobs:     make(map[string]*JobDetail),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddJob registers job. A second job with the same id is rejected with a
// *SchedulingError wrapping ErrDuplicateJob.
func (s *JobScheduler) AddJob(job *JobDetail) error {
	if job == nil {
		return &SchedulingError{Err: errors.New("job cannot be nil")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &SchedulingError{JobID: job.ID(), Err: ErrSchedulerClosed}
	}
	if _, exists := s.jobs[job.ID()]; exists {
		return &SchedulingError{JobID: job.ID(), Err: ErrDuplicateJob}
	}
	s.jobs[job.ID()] = job
	s.order = append(s.order, job.ID())
	return nil
}

// RunAllJobs starts every pending job and returns once all of them are
// terminal. Job failures are recorded on each job's HealthState and do not
// produce an error here; the returned error is always a *SchedulingError.
//
// A job whose error reports a missing node cancels the context of the
// others, since the topology they share is broken.
func (s *JobScheduler) RunAllJobs(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return &SchedulingError{Err: ErrSchedulerClosed}
	}
	if s.running {
		s.mu.Unlock()
		return &SchedulingError{Err: ErrAlreadyRunning}
	}
	if s.pool != nil && s.pool.Closed() {
		s.mu.Unlock()
		return &SchedulingError{Err: workerpool.ErrPoolClosed}
	}
	s.running = true
	jobs := make([]*JobDetail, 0, len(s.order))
	for _, id := range s.order {
		jobs = append(jobs, s.jobs[id])
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	logger := ctxlog.FromContext(ctx)
	logger.Info("Running jobs.", "count", len(jobs))

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	// A plain Group: no cancel-on-error, siblings keep going.
	var g errgroup.Group
	for _, job := range jobs {
		if !job.Health().start() {
			logger.Debug("Skipping job that already ran.", "job", job.ID())
			continue
		}
		job := job
		g.Go(func() error {
			return s.runJob(runCtx, cancel, job)
		})
	}
	// Each job's error already lives on its HealthState; RunAllJobs reports
	// scheduling failures only, so Wait's first job error is dropped.
	_ = g.Wait()

	sum := s.Summary()
	logger.Info("All jobs finished.", "finished", sum.Finished, "error", sum.Error)
	return nil
}

// runJob runs one job to a terminal flag and returns the job's error.
func (s *JobScheduler) runJob(ctx context.Context, cancel context.CancelCauseFunc, job *JobDetail) error {
	logger := ctxlog.FromContext(ctx).With("job", job.ID(), "name", job.Name())
	logger.Debug("Job started.")
	s.observer.JobStarted(ctx, job)

	err := s.invoke(ctx, job)
	job.Health().finish(err)

	if err != nil {
		logger.Warn("Job finished with error.", "error", err)
		if errors.Is(err, graph.ErrNotFound) {
			cancel(err)
		}
	} else {
		logger.Debug("Job finished.", "duration", job.Health().Duration())
	}
	s.observer.JobFinished(ctx, job)
	return err
}

// invoke runs the task, converting a panic into an error so the job still
// reaches a terminal flag.
func (s *JobScheduler) invoke(ctx context.Context, job *JobDetail) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job.task(ctx)
}

// IsJobActive reports whether job is currently Running.
func (s *JobScheduler) IsJobActive(job *JobDetail) bool {
	if job == nil {
		return false
	}
	return job.Health().Flag() == Running
}

// Jobs returns the registered jobs in registration order.
func (s *JobScheduler) Jobs() []*JobDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*JobDetail, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.jobs[id])
	}
	return out
}

// Health returns the HealthState of the job with id.
func (s *JobScheduler) Health(id string) (*HealthState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	return job.Health(), true
}

// Summary counts jobs per flag.
type Summary struct {
	Pending  int
	Running  int
	Finished int
	Error    int
}

// Total is the number of jobs counted.
func (s Summary) Total() int {
	return s.Pending + s.Running + s.Finished + s.Error
}

// Summary returns the current count of jobs per flag.
func (s *JobScheduler) Summary() Summary {
	var sum Summary
	for _, job := range s.Jobs() {
		switch job.Health().Flag() {
		case Pending:
			sum.Pending++
		case Running:
			sum.Running++
		case Finished:
			sum.Finished++
		case Error:
			sum.Error++
		}
	}
	return sum
}

// Cleanup closes the worker pool, if one was given, and forgets every job.
// It is safe to call more than once. Calling it while RunAllJobs is in
// progress waits for running node work to release its pool slots.
func (s *JobScheduler) Cleanup() {
	s.mu.Lock()
	s.closed = true
	s.jobs = make(map[string]*JobDetail)
	s.order = nil
	pool := s.pool
	s.mu.Unlock()

	if pool != nil {
		pool.Close()
	}
}
