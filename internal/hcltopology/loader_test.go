package hcltopology

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/gridwalk/internal/nodeid"
	"github.com/specialistvlad/gridwalk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func load(t *testing.T, files map[string]string) (map[string][]string, error) {
	t.Helper()
	dir := testutil.WriteFiles(t, files)
	store, err := NewLoader().Load(context.Background(), dir)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	refs, err := store.ListAllRefs(ctx)
	require.NoError(t, err)
	out := make(map[string][]string, len(refs))
	for _, ref := range refs {
		d, err := store.GetNode(ctx, ref)
		require.NoError(t, err)
		children := []string{}
		for _, c := range d.Downstream {
			children = append(children, c.String())
		}
		out[ref.String()] = children
	}
	return out, nil
}

func TestLoad_InvertsDependsOn(t *testing.T) {
	topology, err := load(t, map[string]string{
		"grid/main.hcl": `
			step "print" "a" {}

			step "print" "b" {
			  depends_on = ["step.print.a"]
			}

			step "print" "c" {
			  depends_on = ["print.a"]
			}

			step "print" "d" {
			  depends_on = ["step.print.b", "step.print.c"]
			}
		`,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"step.print.a": {"step.print.b", "step.print.c"},
		"step.print.b": {"step.print.d"},
		"step.print.c": {"step.print.d"},
		"step.print.d": {},
	}, topology)
}

func TestLoad_MultipleFilesAndDirectories(t *testing.T) {
	topology, err := load(t, map[string]string{
		"grid/one.hcl":        `step "print" "a" {}`,
		"grid/nested/two.hcl": `step "sleep" "b" { depends_on = ["print.a"] }`,
		"grid/README.md":      `not hcl`,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"step.sleep.b"}, topology["step.print.a"])
}

func TestLoad_Arguments(t *testing.T) {
	dir := testutil.WriteFiles(t, map[string]string{
		"main.hcl": `
			step "print" "a" {
			  arguments {
			    message = "hello"
			    count   = 3
			    ratio   = 0.5
			    enabled = true
			    tags    = ["x", "y"]
			    labels  = { team = "core" }
			  }
			}
		`,
	})
	ctx := context.Background()
	store, err := NewLoader().Load(ctx, filepath.Join(dir, "main.hcl"))
	require.NoError(t, err)

	d, err := store.GetNode(ctx, nodeid.MustParse("step.print.a"))
	require.NoError(t, err)
	assert.Equal(t, "a", d.Name)
	assert.Equal(t, "print", d.Kind)
	assert.Equal(t, map[string]any{
		"message": "hello",
		"count":   int64(3),
		"ratio":   0.5,
		"enabled": true,
		"tags":    []any{"x", "y"},
		"labels":  map[string]any{"team": "core"},
	}, d.Args)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		hcl         string
		errContains string
	}{
		{
			name:        "duplicate step",
			hcl:         `step "print" "a" {}` + "\n" + `step "print" "a" {}`,
			errContains: "already declared",
		},
		{
			name:        "unknown dependency",
			hcl:         `step "print" "a" { depends_on = ["print.ghost"] }`,
			errContains: "unknown step 'step.print.ghost'",
		},
		{
			name:        "self dependency",
			hcl:         `step "print" "a" { depends_on = ["print.a"] }`,
			errContains: "self-referential",
		},
		{
			name:        "syntax error",
			hcl:         `step "print" "a" {`,
			errContains: "failed to parse",
		},
		{
			name:        "variables are not available",
			hcl:         "step \"print\" \"a\" {\n  arguments {\n    message = var.x\n  }\n}",
			errContains: "argument 'message'",
		},
		{
			name:        "misspelled top-level block",
			hcl:         `stpe "print" "a" {}`,
			errContains: "Unsupported block type",
		},
		{
			name:        "unknown block beside steps",
			hcl:         `step "print" "a" {}` + "\n" + `variable "x" {}`,
			errContains: "failed to decode HCL file",
		},
		{
			name:        "misspelled step attribute",
			hcl:         `step "print" "b" { depens_on = ["print.a"] }`,
			errContains: "Unsupported argument",
		},
		{
			name:        "invalid id segment",
			hcl:         `step "print" "bad name" {}`,
			errContains: "invalid",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, map[string]string{"main.hcl": tc.hcl})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestCtyValueToInterface(t *testing.T) {
	testCases := []struct {
		name string
		in   cty.Value
		want any
	}{
		{name: "null", in: cty.NullVal(cty.String), want: nil},
		{name: "unknown", in: cty.UnknownVal(cty.String), want: nil},
		{name: "string", in: cty.StringVal("x"), want: "x"},
		{name: "int", in: cty.NumberIntVal(42), want: int64(42)},
		{name: "float", in: cty.NumberFloatVal(1.5), want: 1.5},
		{name: "bool", in: cty.True, want: true},
		{name: "list", in: cty.ListVal([]cty.Value{cty.StringVal("a")}), want: []any{"a"}},
		{name: "map", in: cty.MapVal(map[string]cty.Value{"k": cty.NumberIntVal(1)}), want: map[string]any{"k": int64(1)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ctyValueToInterface(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
