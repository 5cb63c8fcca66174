package inmemorytopology

import (
	"context"
	"testing"

	"github.com/specialistvlad/gridwalk/internal/nodeid"
	"github.com/specialistvlad/gridwalk/internal/topologystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndGetNode(t *testing.T) {
	s := New()
	ctx := context.Background()
	ref := nodeid.MustParse("step.test.a")

	err := s.AddNode(ctx, topologystore.Descriptor{ID: ref, Name: "a", Kind: "print"})
	require.NoError(t, err)

	d, err := s.GetNode(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "a", d.Name)
	assert.Equal(t, "print", d.Kind)
	assert.Empty(t, d.Downstream)
}

func TestAddNode_Duplicate(t *testing.T) {
	s := New()
	ctx := context.Background()
	ref := nodeid.MustParse("a")

	require.NoError(t, s.AddNode(ctx, topologystore.Descriptor{ID: ref}))
	require.Error(t, s.AddNode(ctx, topologystore.Descriptor{ID: ref}))
	require.Error(t, s.AddNode(ctx, topologystore.Descriptor{}), "empty id must be rejected")
}

func TestGetNode_NotFound(t *testing.T) {
	s := New()
	_, err := s.GetNode(context.Background(), nodeid.MustParse("missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, topologystore.ErrNodeNotFound)
}

func TestAddEdge(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, b, c := nodeid.MustParse("a"), nodeid.MustParse("b"), nodeid.MustParse("c")

	for _, ref := range []nodeid.Ref{a, b, c} {
		require.NoError(t, s.AddNode(ctx, topologystore.Descriptor{ID: ref}))
	}

	require.NoError(t, s.AddEdge(ctx, a, b))
	require.NoError(t, s.AddEdge(ctx, a, c))
	require.NoError(t, s.AddEdge(ctx, a, b), "duplicate edges are idempotent")

	d, err := s.GetNode(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []nodeid.Ref{b, c}, d.Downstream)

	require.Error(t, s.AddEdge(ctx, a, a))
	require.Error(t, s.AddEdge(ctx, a, nodeid.MustParse("ghost")))
	require.Error(t, s.AddEdge(ctx, nodeid.MustParse("ghost"), a))
}

func TestListAllRefs_InsertionOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	ids := []string{"c", "a", "b"}
	for _, id := range ids {
		require.NoError(t, s.AddNode(ctx, topologystore.Descriptor{ID: nodeid.MustParse(id)}))
	}

	refs, err := s.ListAllRefs(ctx)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	for i, id := range ids {
		assert.Equal(t, id, refs[i].String())
	}
	assert.Equal(t, 3, s.Len())
}

func TestGetNode_ReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, b := nodeid.MustParse("a"), nodeid.MustParse("b")
	require.NoError(t, s.AddNode(ctx, topologystore.Descriptor{ID: a, Downstream: []nodeid.Ref{b}}))

	d, err := s.GetNode(ctx, a)
	require.NoError(t, err)
	d.Downstream[0] = nodeid.MustParse("z")

	again, err := s.GetNode(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, b, again.Downstream[0])
}
