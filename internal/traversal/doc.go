// Package traversal drives RuntimeNodes through their lifecycle, starting
// from one or more roots and fanning out along downstream edges.
//
// # Execution Model
//
// Every node reached by the walk goes through the same steps:
//
//  1. **Claim.** The first goroutine to reach a node becomes its only writer.
//     Later arrivals (other parents converging on it) return immediately.
//  2. **Gate.** The owner waits on every direct parent. A failed parent
//     fails the node with an *node.UpstreamFailedError and its work is never
//     invoked.
//  3. **Run.** The node moves to InProgress, its Work runs inside a worker
//     pool slot, and it ends Ready or Failed.
//  4. **Fan out.** Each child is visited on its own goroutine, whatever the
//     outcome, so failures reach every descendant and no waiter is stranded.
//
// Waiting never holds a pool slot. A pool of size one can therefore drive any
// DAG without deadlocking on converging branches.
//
// # Errors
//
// Traverse returns the root causes only: work failures as
// *NodeExecutionError, and structural failures (a dangling edge, a closed
// pool) as they were reported. A structural failure also cancels the rest of
// the walk; nodes that had not started end Failed with the cancellation
// cause. Nodes failed by an upstream failure are visible on the nodes
// themselves and are not repeated in the returned error.
package traversal
