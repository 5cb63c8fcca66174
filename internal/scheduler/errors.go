package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateJob is returned when a job id is registered twice.
	ErrDuplicateJob = errors.New("job already exists")
	// ErrSchedulerClosed is returned after Cleanup.
	ErrSchedulerClosed = errors.New("scheduler is closed")
	// ErrAlreadyRunning is returned when RunAllJobs is entered twice at once.
	ErrAlreadyRunning = errors.New("scheduler is already running")
)

// SchedulingError is a failure to register or start jobs, as opposed to a
// job's own failure.
type SchedulingError struct {
	JobID string
	Err   error
}

func (e *SchedulingError) Error() string {
	if e.JobID == "" {
		return fmt.Sprintf("scheduling failed: %v", e.Err)
	}
	return fmt.Sprintf("scheduling job '%s' failed: %v", e.JobID, e.Err)
}

func (e *SchedulingError) Unwrap() error { return e.Err }
