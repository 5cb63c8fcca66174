package handlers

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/node"
	"github.com/specialistvlad/gridwalk/internal/traversal"
)

// Dispatcher runs each node through the handler registered for its kind.
type Dispatcher struct {
	handlers *Handlers
}

var _ traversal.Work = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher over h.
func NewDispatcher(h *Handlers) *Dispatcher {
	return &Dispatcher{handlers: h}
}

// Execute implements traversal.Work.
func (d *Dispatcher) Execute(ctx context.Context, n *node.RuntimeNode) error {
	meta := n.Meta()
	handler, ok := d.handlers.Get(meta.Kind)
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrUnknownKind, meta.Kind)
	}

	var input any
	if handler.NewInput != nil {
		input = handler.NewInput()
		if err := DecodeArgs(meta.Args, input); err != nil {
			return fmt.Errorf("invalid arguments: %w", err)
		}
	} else if len(meta.Args) > 0 {
		return fmt.Errorf("invalid arguments: kind '%s' takes no arguments", meta.Kind)
	}

	ctx, _ = ctxlog.With(ctx, "node", n.Ref(), "kind", meta.Kind)
	return handler.Fn(ctx, input)
}

// DecodeArgs decodes raw node arguments into out, a pointer to an input
// struct with `arg` tags.
func DecodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "arg",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}
