package localsession

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/specialistvlad/gridwalk/internal/graph"
	"github.com/specialistvlad/gridwalk/internal/handlers"
	"github.com/specialistvlad/gridwalk/internal/inmemorytopology"
	"github.com/specialistvlad/gridwalk/internal/manifest"
	"github.com/specialistvlad/gridwalk/internal/nodeid"
	"github.com/specialistvlad/gridwalk/internal/session"
	"github.com/specialistvlad/gridwalk/internal/topologystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okInput struct {
	ID string `arg:"id"`
}

type recorder struct {
	mu  sync.Mutex
	ran []string
}

func (r *recorder) handlers() *handlers.Handlers {
	h := handlers.New()
	h.RegisterHandler("ok", &handlers.RegisteredHandler{
		NewInput: func() any { return new(okInput) },
		Fn: func(ctx context.Context, input any) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.ran = append(r.ran, input.(*okInput).ID)
			return nil
		},
	})
	h.RegisterHandler("boom", &handlers.RegisteredHandler{
		Fn: func(context.Context, any) error { return errors.New("boom") },
	})
	return h
}

func (r *recorder) sorted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]string(nil), r.ran...)
	sort.Strings(out)
	return out
}

// diamond builds a -> {b, c} -> d. Kind of b is given by bKind.
func diamond(t *testing.T, bKind string) *inmemorytopology.Store {
	t.Helper()
	ctx := context.Background()
	store := inmemorytopology.New()
	add := func(id, kind string, downstream ...string) {
		refs := make([]nodeid.Ref, 0, len(downstream))
		for _, d := range downstream {
			refs = append(refs, nodeid.MustParse(d))
		}
		var args map[string]any
		if kind == "ok" {
			args = map[string]any{"id": id}
		}
		require.NoError(t, store.AddNode(ctx, topologystore.Descriptor{
			ID: nodeid.MustParse(id), Name: id, Kind: kind, Args: args, Downstream: refs,
		}))
	}
	add("a", "ok", "b", "c")
	add("b", bKind, "d")
	add("c", "ok", "d")
	add("d", "ok")
	return store
}

func TestSession_RunDiamond(t *testing.T) {
	t.Parallel()
	for _, mode := range []session.Mode{session.PerSource, session.WholeGraph} {
		t.Run(string(mode), func(t *testing.T) {
			rec := &recorder{}
			store := manifest.NewMemoryStore()
			f := &SessionFactory{Handlers: rec.handlers(), Workers: 2, Mode: mode, Store: store}

			ctx := context.Background()
			s, err := f.NewSession(ctx, diamond(t, "ok"))
			require.NoError(t, err)
			defer func() { require.NoError(t, s.Close(ctx)) }()

			m, err := s.Run(ctx)
			require.NoError(t, err)
			assert.True(t, m.OK())
			assert.Equal(t, 4, m.Counts.Ready)
			assert.Len(t, m.Jobs, 1)
			assert.Equal(t, []string{"a", "b", "c", "d"}, rec.sorted())

			saved, err := store.Load(ctx, m.RunID)
			require.NoError(t, err)
			assert.Same(t, m, saved)
		})
	}
}

func TestSession_FailureContained(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	f := &SessionFactory{Handlers: rec.handlers(), Workers: 4}

	ctx := context.Background()
	s, err := f.NewSession(ctx, diamond(t, "boom"))
	require.NoError(t, err)
	defer s.Close(ctx)

	m, err := s.Run(ctx)
	require.NoError(t, err)
	assert.False(t, m.OK())
	assert.Equal(t, manifest.Counts{Ready: 2, Failed: 2, Errored: 1}, m.Counts)
	assert.Equal(t, []string{"a", "c"}, rec.sorted())

	states := make(map[string]string)
	for _, n := range m.Nodes {
		states[n.ID] = n.State
	}
	assert.Equal(t, map[string]string{"a": "READY", "b": "FAILED", "c": "READY", "d": "FAILED"}, states)
}

// brokenStore accepts nothing.
type brokenStore struct {
	manifest.Store
	err error
}

func (b brokenStore) Save(context.Context, *manifest.Manifest) error { return b.err }

func TestSession_SaveFailureKeepsManifest(t *testing.T) {
	t.Parallel()
	down := errors.New("store down")
	rec := &recorder{}
	f := &SessionFactory{Handlers: rec.handlers(), Workers: 2, Store: brokenStore{err: down}}

	ctx := context.Background()
	s, err := f.NewSession(ctx, diamond(t, "ok"))
	require.NoError(t, err)
	defer s.Close(ctx)

	m, err := s.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, manifest.ErrNotSaved)
	assert.ErrorIs(t, err, down)
	require.NotNil(t, m)
	assert.True(t, m.OK())
	assert.Equal(t, 4, m.Counts.Ready)
}

func TestNewSession_Rejects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	rec := &recorder{}

	t.Run("unknown kind", func(t *testing.T) {
		f := &SessionFactory{Handlers: rec.handlers(), Workers: 1}
		_, err := f.NewSession(ctx, diamond(t, "mystery"))
		assert.ErrorIs(t, err, handlers.ErrUnknownKind)
	})

	t.Run("dangling edge", func(t *testing.T) {
		store := inmemorytopology.New()
		require.NoError(t, store.AddNode(ctx, topologystore.Descriptor{
			ID: nodeid.MustParse("a"), Kind: "ok", Downstream: []nodeid.Ref{nodeid.MustParse("ghost")},
		}))
		f := &SessionFactory{Handlers: rec.handlers(), Workers: 1}
		_, err := f.NewSession(ctx, store)
		assert.ErrorIs(t, err, graph.ErrNotFound)
	})

	t.Run("cycle", func(t *testing.T) {
		store := inmemorytopology.New()
		require.NoError(t, store.AddNode(ctx, topologystore.Descriptor{ID: nodeid.MustParse("a"), Kind: "boom"}))
		require.NoError(t, store.AddNode(ctx, topologystore.Descriptor{ID: nodeid.MustParse("b"), Kind: "boom"}))
		require.NoError(t, store.AddEdge(ctx, nodeid.MustParse("a"), nodeid.MustParse("b")))
		require.NoError(t, store.AddEdge(ctx, nodeid.MustParse("b"), nodeid.MustParse("a")))
		f := &SessionFactory{Handlers: rec.handlers(), Workers: 1}
		_, err := f.NewSession(ctx, store)
		assert.ErrorIs(t, err, graph.ErrCycle)
	})

	t.Run("no workers", func(t *testing.T) {
		f := &SessionFactory{Handlers: rec.handlers()}
		_, err := f.NewSession(ctx, diamond(t, "ok"))
		assert.Error(t, err)
	})

	t.Run("no handlers", func(t *testing.T) {
		f := &SessionFactory{Workers: 1}
		_, err := f.NewSession(ctx, diamond(t, "ok"))
		assert.Error(t, err)
	})
}

func TestSession_EmptyTopology(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := &SessionFactory{Handlers: handlers.New(), Workers: 1}
	s, err := f.NewSession(ctx, inmemorytopology.New())
	require.NoError(t, err)
	defer s.Close(ctx)

	m, err := s.Run(ctx)
	require.NoError(t, err)
	assert.True(t, m.OK())
	assert.Empty(t, m.Nodes)
	assert.Empty(t, m.Jobs)
}
