// Package topologystore defines the contract through which the engine reads
// the static structure of a project's graph.
//
// # Why Topology Store Exists
//
// The execution engine never parses configuration itself. Whatever owns the
// project layout (HCL files, a database, a test fixture) presents the graph
// as a Source, and the engine materializes its per-run node repository from
// it exactly once, before anything executes.
//
// This separation keeps the engine independent of file formats:
//   - **Clarity:** Structure is described once, then frozen for the run
//   - **Testability:** Tests hand the engine an in-memory Source
//   - **Flexibility:** New configuration formats only need a new Source
//
// # Lifecycle and Usage
//
// A Source is:
//  1. **Populated** by a loader (see internal/hcltopology) or by a test
//  2. **Read** once by graph.NewFromSource at the start of a run
//  3. **Ignored** for the rest of the run; the repository is authoritative
package topologystore

import (
	"context"

	"github.com/specialistvlad/gridwalk/internal/nodeid"
)

// Descriptor is the static description of one node: its identity, its
// descriptive metadata and its outgoing edges.
type Descriptor struct {
	// ID is the node's identity.
	ID nodeid.Ref
	// Name is the human-readable instance name.
	Name string
	// Kind selects the business logic that runs for the node.
	Kind string
	// Args holds already-decoded argument values.
	Args map[string]any
	// Downstream lists the children of the node, in declaration order.
	Downstream []nodeid.Ref
}

// Source is the read side of a topology.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent reads.
type Source interface {
	// ListAllRefs returns every node known to the topology. The order is not
	// significant.
	ListAllRefs(ctx context.Context) ([]nodeid.Ref, error)

	// GetNode returns the descriptor for ref. Implementations should return an
	// error wrapping ErrNodeNotFound when ref is unknown.
	GetNode(ctx context.Context, ref nodeid.Ref) (Descriptor, error)
}
