package node

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/gridwalk/internal/nodeid"
)

// State represents the lifecycle state of a node during one run.
type State int32

const (
	// NotStarted is the initial state: the node's work has not begun.
	NotStarted State = iota
	// InProgress indicates the node's work is currently executing.
	InProgress
	// Ready indicates the node completed successfully. Children may proceed.
	Ready
	// Failed indicates the node's work raised an error, or an upstream node failed.
	Failed
)

// String returns the upper-case name of the state.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case InProgress:
		return "IN_PROGRESS"
	case Ready:
		return "READY"
	case Failed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// IsTerminal reports whether no further transition can leave s.
func (s State) IsTerminal() bool {
	return s == Ready || s == Failed
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case NotStarted:
		return to == InProgress || to == Failed
	case InProgress:
		return to == Ready || to == Failed
	default:
		return false
	}
}

var (
	// ErrInvalidTransition is returned for any transition the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid node state transition")
	// ErrNodeFailed is returned by WaitUntilReady when the awaited node failed.
	ErrNodeFailed = errors.New("node failed")
	// ErrUpstreamFailed marks a node that was never run because a parent failed.
	ErrUpstreamFailed = errors.New("upstream node failed")
)

// TransitionError describes a rejected state change.
type TransitionError struct {
	Ref      nodeid.Ref
	From, To State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("node %s: cannot transition from %s to %s", e.Ref, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// FailedError is what a waiter sees when the node it waited on failed.
type FailedError struct {
	Ref   nodeid.Ref
	Cause error
}

func (e *FailedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("node %s failed", e.Ref)
	}
	return fmt.Sprintf("node %s failed: %v", e.Ref, e.Cause)
}

func (e *FailedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrNodeFailed}
	}
	return []error{ErrNodeFailed, e.Cause}
}

// UpstreamFailedError is recorded on a node that was skipped because Parent
// ended in Failed.
type UpstreamFailedError struct {
	Ref    nodeid.Ref
	Parent nodeid.Ref
}

func (e *UpstreamFailedError) Error() string {
	return fmt.Sprintf("skipped %s due to upstream failure of '%s'", e.Ref, e.Parent)
}

func (e *UpstreamFailedError) Unwrap() error { return ErrUpstreamFailed }
