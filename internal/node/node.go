package node

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/gridwalk/internal/nodeid"
)

// Meta is the descriptive part of a node that the engine carries around but
// never interprets. It is handed to the work executor unchanged.
type Meta struct {
	// Name is the human-readable instance name from the configuration.
	Name string
	// Kind selects the business logic that runs for this node, e.g. "print".
	Kind string
	// Args holds the node's decoded arguments.
	Args map[string]any
}

// RuntimeNode is a single vertex of the execution graph for one run. It owns
// the node's lifecycle state and the readiness signal its children wait on.
type RuntimeNode struct {
	// ref is the unique identity of the node. Immutable.
	ref nodeid.Ref
	// downstream lists the children in declaration order. Immutable.
	downstream []nodeid.Ref
	meta       Meta

	// --- Internal state management ---

	// mu guards every field below it.
	mu         sync.Mutex
	state      State
	err        error
	startedAt  time.Time
	finishedAt time.Time
	// done is closed exactly once, on the transition into a terminal state.
	done chan struct{}

	// claimed hands the single-writer role to the first traversal to arrive.
	claimed atomic.Bool
}

// New creates a node in the NotStarted state. The downstream slice is copied.
func New(ref nodeid.Ref, downstream []nodeid.Ref, meta Meta) (*RuntimeNode, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("node reference cannot be empty")
	}
	children := make([]nodeid.Ref, 0, len(downstream))
	for _, child := range downstream {
		if child.IsZero() {
			return nil, fmt.Errorf("node %s has an empty downstream reference", ref)
		}
		if child == ref {
			return nil, fmt.Errorf("self-referential edge not allowed: %s -> %s", ref, ref)
		}
		children = append(children, child)
	}
	return &RuntimeNode{
		ref:        ref,
		downstream: children,
		meta:       meta,
		state:      NotStarted,
		done:       make(chan struct{}),
	}, nil
}

// Ref returns the node's identity.
func (n *RuntimeNode) Ref() nodeid.Ref {
	return n.ref
}

// Meta returns the node's descriptive metadata.
func (n *RuntimeNode) Meta() Meta {
	return n.meta
}

// Downstream returns a copy of the node's children, in declaration order.
func (n *RuntimeNode) Downstream() []nodeid.Ref {
	out := make([]nodeid.Ref, len(n.downstream))
	copy(out, n.downstream)
	return out
}

// State returns the node's current lifecycle state.
func (n *RuntimeNode) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Err returns the failure cause recorded with the Failed transition, if any.
func (n *RuntimeNode) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

// Claim reports whether the caller became the node's single writer. Only
// the first call returns true.
func (n *RuntimeNode) Claim() bool {
	return n.claimed.CompareAndSwap(false, true)
}

// Claimed reports whether some traversal already owns this node.
func (n *RuntimeNode) Claimed() bool {
	return n.claimed.Load()
}

// SetState moves the node to s. Entering a terminal state wakes every
// goroutine blocked in WaitUntilReady.
func (n *RuntimeNode) SetState(s State) error {
	return n.transition(s, nil)
}

// Fail moves the node to Failed and records cause.
func (n *RuntimeNode) Fail(cause error) error {
	return n.transition(Failed, cause)
}

func (n *RuntimeNode) transition(to State, cause error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	from := n.state
	if !isAllowedTransition(from, to) {
		return &TransitionError{Ref: n.ref, From: from, To: to}
	}

	now := time.Now()
	n.state = to
	switch to {
	case InProgress:
		n.startedAt = now
	case Ready, Failed:
		n.err = cause
		n.finishedAt = now
		close(n.done)
	}
	return nil
}

// WaitUntilReady blocks until the node reaches a terminal state. It returns
// nil once the node is Ready and a *FailedError once it is Failed. The wait
// is abandoned with ctx.Err() when ctx is done.
func (n *RuntimeNode) WaitUntilReady(ctx context.Context) error {
	for {
		n.mu.Lock()
		state, cause, done := n.state, n.err, n.done
		n.mu.Unlock()

		switch state {
		case Ready:
			return nil
		case Failed:
			return &FailedError{Ref: n.ref, Cause: cause}
		}

		select {
		case <-done:
			// Re-check the state under the lock on the next iteration.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Status is a point-in-time copy of a node's observable state.
type Status struct {
	Ref        nodeid.Ref
	Name       string
	Kind       string
	State      State
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is the time spent between InProgress and the terminal state. It is
// zero for nodes that never ran.
func (s Status) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Snapshot returns the node's current Status.
func (n *RuntimeNode) Snapshot() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return Status{
		Ref:        n.ref,
		Name:       n.meta.Name,
		Kind:       n.meta.Kind,
		State:      n.state,
		Err:        n.err,
		StartedAt:  n.startedAt,
		FinishedAt: n.finishedAt,
	}
}
