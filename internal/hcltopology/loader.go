package hcltopology

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/fsutil"
	"github.com/specialistvlad/gridwalk/internal/inmemorytopology"
	"github.com/specialistvlad/gridwalk/internal/nodeid"
	"github.com/specialistvlad/gridwalk/internal/topologystore"
)

const stepPrefix = "step"

// Loader reads grid files into an in-memory topology.
type Loader struct{}

// NewLoader creates a new HCL grid loader.
func NewLoader() *Loader {
	return &Loader{}
}

type parsedStep struct {
	desc      topologystore.Descriptor
	dependsOn []string
	file      string
}

// Load parses every .hcl file under paths (files or directories, walked
// recursively) and returns the combined topology. Duplicate step ids and
// depends_on entries naming unknown steps are errors.
func (l *Loader) Load(ctx context.Context, paths ...string) (*inmemorytopology.Store, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var steps []parsedStep
	seen := make(map[nodeid.Ref]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, s := range root.Steps {
			ref, err := stepRef(s.Kind, s.Name)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			if prev, dup := seen[ref]; dup {
				return nil, fmt.Errorf("step '%s' in %s is already declared in %s", ref, file, prev)
			}
			seen[ref] = file

			args, err := decodeArguments(s.Arguments)
			if err != nil {
				return nil, fmt.Errorf("in %s, step '%s': %w", file, ref, err)
			}
			steps = append(steps, parsedStep{
				desc:      topologystore.Descriptor{ID: ref, Name: s.Name, Kind: s.Kind, Args: args},
				dependsOn: s.DependsOn,
				file:      file,
			})
		}
	}

	store := inmemorytopology.New()
	for _, s := range steps {
		if err := store.AddNode(ctx, s.desc); err != nil {
			return nil, err
		}
	}
	for _, s := range steps {
		for _, dep := range s.dependsOn {
			parent, err := dependencyRef(dep)
			if err != nil {
				return nil, fmt.Errorf("in %s, step '%s': %w", s.file, s.desc.ID, err)
			}
			if _, ok := seen[parent]; !ok {
				return nil, fmt.Errorf("in %s, step '%s' depends on unknown step '%s'", s.file, s.desc.ID, parent)
			}
			if err := store.AddEdge(ctx, parent, s.desc.ID); err != nil {
				return nil, fmt.Errorf("in %s, step '%s': %w", s.file, s.desc.ID, err)
			}
		}
	}

	logger.Debug("HCL loading complete.", "steps", store.Len())
	return store, nil
}

func stepRef(kind, name string) (nodeid.Ref, error) {
	return nodeid.Parse(stepPrefix + "." + kind + "." + name)
}

// dependencyRef accepts "step.<kind>.<name>" or the short "<kind>.<name>".
func dependencyRef(raw string) (nodeid.Ref, error) {
	if !strings.HasPrefix(raw, stepPrefix+".") {
		raw = stepPrefix + "." + raw
	}
	return nodeid.Parse(raw)
}
