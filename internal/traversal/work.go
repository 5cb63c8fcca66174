package traversal

import (
	"context"

	"github.com/specialistvlad/gridwalk/internal/node"
)

// Work is the business logic attached to nodes. Execute is called at most
// once per node per run, only after every parent of n is Ready.
type Work interface {
	Execute(ctx context.Context, n *node.RuntimeNode) error
}

// WorkFunc adapts an ordinary function to Work.
type WorkFunc func(ctx context.Context, n *node.RuntimeNode) error

// Execute calls f(ctx, n).
func (f WorkFunc) Execute(ctx context.Context, n *node.RuntimeNode) error {
	return f(ctx, n)
}

// NodeObserver is notified after a node reaches a terminal state.
type NodeObserver interface {
	NodeFinished(ctx context.Context, status node.Status)
}
