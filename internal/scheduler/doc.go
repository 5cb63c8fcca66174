// Package scheduler runs jobs: independent units of work, usually a graph
// traversal from one root, each with its own HealthState.
//
// # How It Works
//
// Jobs are registered with AddJob and started together by RunAllJobs, which
// returns once every job is terminal. One job failing never cancels its
// siblings; the outcome of each job lives on its HealthState. The only
// run-wide abort is structural: a job that reports a missing node cancels the
// context shared by the remaining jobs.
//
// # Job Concurrency
//
// Every job gets its own goroutine. Jobs rooted at different sources may wait
// on each other's nodes, so capping job concurrency could starve a job that
// another job is waiting on. Node work is bounded separately, by the worker
// pool the traversal runs in.
package scheduler
