package scheduler

import (
	"context"

	"github.com/specialistvlad/gridwalk/internal/node"
	"github.com/specialistvlad/gridwalk/internal/traversal"
)

// Observer receives job and node lifecycle events for reporting. It must
// not block and has no influence on scheduling.
type Observer interface {
	traversal.NodeObserver
	JobStarted(ctx context.Context, job *JobDetail)
	JobFinished(ctx context.Context, job *JobDetail)
}

// NopObserver ignores every event.
type NopObserver struct{}

var _ Observer = NopObserver{}

func (NopObserver) JobStarted(context.Context, *JobDetail)    {}
func (NopObserver) JobFinished(context.Context, *JobDetail)   {}
func (NopObserver) NodeFinished(context.Context, node.Status) {}
