// Package env implements the "env" kind: it checks that the named
// environment variables are set and fails the node otherwise.
package env

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/handlers"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Lookup defaults to os.LookupEnv.
	Lookup func(key string) (string, bool)
}

// Input defines the arguments for the env kind.
type Input struct {
	Required []string `arg:"required"`
}

// Run is the handler for the env kind.
func (m *Module) Run(ctx context.Context, input *Input) error {
	lookup := m.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var missing []string
	for _, key := range input.Required {
		if v, ok := lookup(key); !ok || v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing environment variables: %s", strings.Join(missing, ", "))
	}
	ctxlog.FromContext(ctx).Debug("Environment check passed.", "count", len(input.Required))
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterHandler("env", &handlers.RegisteredHandler{
		NewInput: func() any { return new(Input) },
		Fn: func(ctx context.Context, input any) error {
			return m.Run(ctx, input.(*Input))
		},
	})
}
