package traversal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/node"
	"github.com/specialistvlad/gridwalk/internal/nodeid"
	"github.com/specialistvlad/gridwalk/internal/workerpool"
)

// Graph is the part of graph.Repository the traversal reads.
type Graph interface {
	GetNode(ref nodeid.Ref) (*node.RuntimeNode, error)
	GetDownstream(ref nodeid.Ref) ([]*node.RuntimeNode, error)
	GetUpstream(ref nodeid.Ref) ([]*node.RuntimeNode, error)
}

// Traverser walks a graph and runs each node's work. One Traverser can serve
// any number of concurrent Traverse calls over the same graph; the node
// claims keep execution at most once across all of them.
type Traverser struct {
	graph    Graph
	pool     *workerpool.Pool
	work     Work
	observer NodeObserver
}

// Option configures a Traverser.
type Option func(*Traverser)

// WithObserver registers o for terminal node transitions.
func WithObserver(o NodeObserver) Option {
	return func(t *Traverser) {
		t.observer = o
	}
}

// New creates a Traverser. All three collaborators are required.
func New(g Graph, pool *workerpool.Pool, work Work, opts ...Option) (*Traverser, error) {
	if g == nil {
		return nil, errors.New("traversal requires a graph")
	}
	if pool == nil {
		return nil, errors.New("traversal requires a worker pool")
	}
	if work == nil {
		return nil, errors.New("traversal requires a work executor")
	}
	t := &Traverser{graph: g, pool: pool, work: work}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Traverse executes root and everything downstream of it, and returns once
// every node this call claimed is terminal.
//
// Parents outside root's subgraph are waited on like any other parent; some
// other traversal must drive them, or ctx must end the wait.
func (t *Traverser) Traverse(ctx context.Context, root nodeid.Ref) error {
	return t.TraverseAll(ctx, []nodeid.Ref{root})
}

// TraverseAll is Traverse over several roots sharing one walk.
func (t *Traverser) TraverseAll(ctx context.Context, roots []nodeid.Ref) error {
	starts := make([]*node.RuntimeNode, 0, len(roots))
	for _, ref := range roots {
		n, err := t.graph.GetNode(ref)
		if err != nil {
			return fmt.Errorf("cannot start traversal: %w", err)
		}
		starts = append(starts, n)
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	w := &walk{
		t:      t,
		ctx:    runCtx,
		cancel: cancel,
		logger: ctxlog.FromContext(ctx),
	}
	for _, n := range starts {
		w.spawn(n)
	}
	w.wg.Wait()

	// Nodes failed by an outer cancellation record nothing; report its cause
	// once.
	if w.interrupted && ctx.Err() != nil {
		w.record(fmt.Errorf("traversal interrupted: %w", context.Cause(ctx)))
	}
	return errors.Join(w.errs...)
}

// walk is the state of one TraverseAll call.
type walk struct {
	t      *Traverser
	ctx    context.Context
	cancel context.CancelCauseFunc
	logger *slog.Logger
	wg     sync.WaitGroup

	mu          sync.Mutex
	errs        []error
	interrupted bool
}

func (w *walk) spawn(n *node.RuntimeNode) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.visit(n)
	}()
}

func (w *walk) visit(n *node.RuntimeNode) {
	if !n.Claim() {
		return
	}
	w.logger.Debug("Node claimed.", "node", n.Ref())

	w.process(n)

	children, err := w.t.graph.GetDownstream(n.Ref())
	if err != nil {
		w.abort(err)
		return
	}
	for _, child := range children {
		w.spawn(child)
	}
}

// process takes a claimed node from NotStarted to a terminal state.
func (w *walk) process(n *node.RuntimeNode) {
	logger := w.logger.With("node", n.Ref())

	parents, err := w.t.graph.GetUpstream(n.Ref())
	if err != nil {
		w.abort(err)
		w.fail(n, err)
		return
	}
	for _, p := range parents {
		if err := p.WaitUntilReady(w.ctx); err != nil {
			var failed *node.FailedError
			if errors.As(err, &failed) {
				logger.Debug("Skipping node due to upstream failure.", "parent", p.Ref())
				w.fail(n, &node.UpstreamFailedError{Ref: n.Ref(), Parent: p.Ref()})
				return
			}
			w.interrupt(n, fmt.Errorf("abandoned waiting for parent '%s': %w", p.Ref(), context.Cause(w.ctx)))
			return
		}
	}

	if w.ctx.Err() != nil {
		w.interrupt(n, fmt.Errorf("not started: %w", context.Cause(w.ctx)))
		return
	}

	var workErr error
	poolErr := w.t.pool.Do(w.ctx, func(ctx context.Context) error {
		if err := n.SetState(node.InProgress); err != nil {
			return err
		}
		logger.Debug("Node execution started.")
		workErr = w.execute(ctx, n)
		return nil
	})

	switch {
	case poolErr != nil:
		if w.ctx.Err() == nil {
			w.abort(poolErr)
			w.fail(n, poolErr)
			return
		}
		w.interrupt(n, poolErr)
	case workErr != nil:
		execErr := &NodeExecutionError{Ref: n.Ref(), Err: workErr}
		logger.Error("Node execution failed.", "error", workErr)
		w.record(execErr)
		w.fail(n, execErr)
	default:
		if err := n.SetState(node.Ready); err != nil {
			w.abort(err)
			return
		}
		logger.Debug("Node execution succeeded.")
		w.notify(n)
	}
}

// execute runs the node's work, converting a panic into an error.
func (w *walk) execute(ctx context.Context, n *node.RuntimeNode) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.t.work.Execute(ctx, n)
}

func (w *walk) fail(n *node.RuntimeNode, cause error) {
	if err := n.Fail(cause); err != nil {
		w.logger.Error("Failed to record node failure.", "node", n.Ref(), "error", err)
		return
	}
	w.notify(n)
}

// interrupt fails a node the walk gave up on because its context was done.
func (w *walk) interrupt(n *node.RuntimeNode, cause error) {
	w.mu.Lock()
	w.interrupted = true
	w.mu.Unlock()
	w.fail(n, cause)
}

func (w *walk) notify(n *node.RuntimeNode) {
	if w.t.observer != nil {
		w.t.observer.NodeFinished(w.ctx, n.Snapshot())
	}
}

func (w *walk) record(err error) {
	w.mu.Lock()
	w.errs = append(w.errs, err)
	w.mu.Unlock()
}

// abort records a structural error and cancels the remaining walk.
func (w *walk) abort(err error) {
	w.logger.Error("Traversal aborted.", "error", err)
	w.record(err)
	w.cancel(err)
}
