// Package sleep implements the "sleep" kind: it waits for its duration or
// until the run is cancelled.
package sleep

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input defines the arguments for the sleep kind.
type Input struct {
	Duration time.Duration `arg:"duration"`
}

// Run is the handler for the sleep kind.
func Run(ctx context.Context, input *Input) error {
	if input.Duration < 0 {
		return fmt.Errorf("duration must not be negative, got %s", input.Duration)
	}
	ctxlog.FromContext(ctx).Debug("Sleeping.", "duration", input.Duration)

	timer := time.NewTimer(input.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler("sleep", &handlers.RegisteredHandler{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, input any) error {
			return Run(ctx, input.(*Input))
		},
	})
}
