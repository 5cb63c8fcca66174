// internal/nodeid/doc.go

/*
Package nodeid provides the comparable identity used for every node of an
execution graph.

A Ref wraps the canonical identifier string of a node, e.g. `step.print.a`
or `db.users[0]`. The format is a dot-separated sequence of segments, where
each segment may carry an index. Refs are plain values: they compare with ==
and are used directly as map keys throughout the engine.

This package centralizes all validation and formatting of identifiers, so a
Ref that made it past Parse is always well formed.
*/
package nodeid
