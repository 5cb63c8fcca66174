package scheduler

import (
	"fmt"
	"sync"
	"time"
)

// HealthFlag is the coarse status of a job.
type HealthFlag int32

const (
	// Pending means the job is registered but has not started.
	Pending HealthFlag = iota
	// Running means the job's task is executing.
	Running
	// Finished means the task returned without error.
	Finished
	// Error means the task returned an error, recorded as the cause.
	Error
)

func (f HealthFlag) String() string {
	switch f {
	case Pending:
		return "PENDING"
	case Running:
		return "RUNNING"
	case Finished:
		return "FINISHED"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("HealthFlag(%d)", int32(f))
	}
}

// IsTerminal reports whether f is Finished or Error.
func (f HealthFlag) IsTerminal() bool {
	return f == Finished || f == Error
}

// HealthState is the per-job record. Only the owning job writes it; any
// goroutine may read it.
type HealthState struct {
	mu         sync.RWMutex
	flag       HealthFlag
	cause      error
	startedAt  time.Time
	finishedAt time.Time
}

// Flag returns the current flag.
func (h *HealthState) Flag() HealthFlag {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.flag
}

// Cause returns the error recorded with the Error flag.
func (h *HealthState) Cause() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cause
}

// StartedAt returns when the job started running, or the zero time.
func (h *HealthState) StartedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.startedAt
}

// Duration is the job's run time so far: up to now while Running, up to the
// finish once terminal, zero before start.
func (h *HealthState) Duration() time.Duration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch {
	case h.startedAt.IsZero():
		return 0
	case h.finishedAt.IsZero():
		return time.Since(h.startedAt)
	default:
		return h.finishedAt.Sub(h.startedAt)
	}
}

// start moves Pending to Running. It reports false if the job already ran.
func (h *HealthState) start() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.flag != Pending {
		return false
	}
	h.flag = Running
	h.startedAt = time.Now()
	return true
}

func (h *HealthState) finish(cause error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finishedAt = time.Now()
	if cause != nil {
		h.flag = Error
		h.cause = cause
		return
	}
	h.flag = Finished
}
