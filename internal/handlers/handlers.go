package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownKind is returned for a node kind no module registered.
var ErrUnknownKind = errors.New("no handler registered for kind")

// Module is a unit of node logic compiled into the binary.
type Module interface {
	Register(h *Handlers)
}

// RegisteredHandler holds the Go parts of one kind.
type RegisteredHandler struct {
	// NewInput returns a pointer to a fresh input struct, or nil for kinds
	// without arguments.
	NewInput func() any
	// Fn runs the node with its decoded input.
	Fn func(ctx context.Context, input any) error
}

// Handlers holds all the registered handlers.
type Handlers struct {
	mu  sync.RWMutex
	all map[string]*RegisteredHandler
}

// New creates an empty registry.
func New() *Handlers {
	return &Handlers{
		all: make(map[string]*RegisteredHandler),
	}
}

// NewWithModules creates a registry and registers every module in it.
func NewWithModules(modules ...Module) *Handlers {
	h := New()
	for _, m := range modules {
		m.Register(h)
	}
	return h
}

// RegisterHandler registers the handler for kind. Registering a kind twice
// is a programming error and panics.
func (h *Handlers) RegisterHandler(kind string, handler *RegisteredHandler) {
	if handler == nil || handler.Fn == nil {
		panic(fmt.Sprintf("handler for kind '%s' has no function", kind))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.all[kind]; exists {
		panic(fmt.Sprintf("handler for kind '%s' already registered", kind))
	}
	h.all[kind] = handler
}

// Get returns the handler for kind.
func (h *Handlers) Get(kind string) (*RegisteredHandler, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	handler, ok := h.all[kind]
	return handler, ok
}

// Kinds returns every registered kind, sorted.
func (h *Handlers) Kinds() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	kinds := make([]string, 0, len(h.all))
	for k := range h.all {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Validate reports every kind in kinds that has no handler.
func (h *Handlers) Validate(kinds []string) error {
	var errs []error
	reported := make(map[string]bool)
	for _, k := range kinds {
		if _, ok := h.Get(k); !ok && !reported[k] {
			reported[k] = true
			errs = append(errs, fmt.Errorf("%w: '%s'", ErrUnknownKind, k))
		}
	}
	return errors.Join(errs...)
}
