// Package fail implements the "fail" kind, which always fails with its
// message. Grids use it to rehearse failure handling.
package fail

import (
	"context"
	"errors"

	"github.com/specialistvlad/gridwalk/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input defines the arguments for the fail kind.
type Input struct {
	Message string `arg:"message"`
}

// Run is the handler for the fail kind.
func Run(_ context.Context, input *Input) error {
	if input.Message == "" {
		return errors.New("failed on purpose")
	}
	return errors.New(input.Message)
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler("fail", &handlers.RegisteredHandler{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, input any) error {
			return Run(ctx, input.(*Input))
		},
	})
}
