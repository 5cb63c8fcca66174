package topologystore

import "errors"

// ErrNodeNotFound is returned by a Source asked for a node it does not hold.
var ErrNodeNotFound = errors.New("node not found in topology")
