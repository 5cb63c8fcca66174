// Package graph holds the per-run node repository: the mapping from node
// reference to RuntimeNode that the traversal and the diagnostics query.
//
// # Why Graph Package Exists
//
// The topology source describes structure; the repository turns that
// structure into live, stateful RuntimeNodes exactly once per run. After
// construction the maps are never written again, so lookups need no locking.
//
//	┌──────────────────────┐   NewFromSource   ┌──────────────────────┐
//	│ topologystore.Source │ ────────────────▶ │  graph.Repository    │
//	│   (static topology)  │                   │ (ref → RuntimeNode)  │
//	└──────────────────────┘                   └──────────┬───────────┘
//	                                                      │
//	                                    GetNode / GetDownstream / GetUpstream
//	                                                      │
//	                                           ┌──────────▼───────────┐
//	                                           │ traversal, pathfinder│
//	                                           └──────────────────────┘
//
// # Integrity
//
// Every ref in a node's downstream list is expected to resolve. A dangling
// edge is kept as-is and reported as a *NotFoundError by GetDownstream, when
// the traversal reaches it, and by Validate, for callers who want to check
// ahead of time. Acyclicity is likewise a precondition; DetectCycles exists
// for callers who cannot guarantee it.
package graph
