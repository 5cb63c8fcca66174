package traversal

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/gridwalk/internal/nodeid"
)

// ErrNodeExecution is matched by every *NodeExecutionError.
var ErrNodeExecution = errors.New("node execution failed")

// NodeExecutionError records that a node's work returned an error (or
// panicked). It is stored on the node and returned from Traverse.
type NodeExecutionError struct {
	Ref nodeid.Ref
	Err error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node '%s' execution failed: %v", e.Ref, e.Err)
}

func (e *NodeExecutionError) Unwrap() []error {
	return []error{ErrNodeExecution, e.Err}
}
