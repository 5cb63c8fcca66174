// Package manifest records the outcome of a run: which nodes reached Ready,
// which failed and why, and how each job ended. A manifest is built once the
// scheduler returns and can be rendered for humans or machines and kept in a
// Store.
package manifest

import (
	"time"

	"github.com/specialistvlad/gridwalk/internal/node"
	"github.com/specialistvlad/gridwalk/internal/scheduler"
)

// NodeResult is the final state of one node.
type NodeResult struct {
	ID              string  `json:"id"`
	Name            string  `json:"name,omitempty"`
	Kind            string  `json:"kind,omitempty"`
	State           string  `json:"state"`
	Error           string  `json:"error,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// JobResult is the final health of one job.
type JobResult struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Flag            string  `json:"flag"`
	Error           string  `json:"error,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Counts aggregates node and job outcomes.
type Counts struct {
	Ready    int `json:"ready"`
	Failed   int `json:"failed"`
	NotRun   int `json:"not_run"`
	Finished int `json:"jobs_finished"`
	Errored  int `json:"jobs_errored"`
}

// Manifest is the record of one run.
type Manifest struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Nodes      []NodeResult `json:"nodes"`
	Jobs       []JobResult  `json:"jobs"`
	Counts     Counts       `json:"counts"`
}

// Build assembles a manifest from node snapshots and jobs. Nodes keep the
// order they are given in.
func Build(runID string, startedAt, finishedAt time.Time, nodes []node.Status, jobs []*scheduler.JobDetail) *Manifest {
	m := &Manifest{
		RunID:      runID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Nodes:      make([]NodeResult, 0, len(nodes)),
		Jobs:       make([]JobResult, 0, len(jobs)),
	}

	for _, s := range nodes {
		r := NodeResult{
			ID:              s.Ref.String(),
			Name:            s.Name,
			Kind:            s.Kind,
			State:           s.State.String(),
			DurationSeconds: s.Duration().Seconds(),
		}
		if s.Err != nil {
			r.Error = s.Err.Error()
		}
		switch s.State {
		case node.Ready:
			m.Counts.Ready++
		case node.Failed:
			m.Counts.Failed++
		default:
			m.Counts.NotRun++
		}
		m.Nodes = append(m.Nodes, r)
	}

	for _, job := range jobs {
		h := job.Health()
		r := JobResult{
			ID:              job.ID(),
			Name:            job.Name(),
			Flag:            h.Flag().String(),
			DurationSeconds: h.Duration().Seconds(),
		}
		if cause := h.Cause(); cause != nil {
			r.Error = cause.Error()
		}
		switch h.Flag() {
		case scheduler.Finished:
			m.Counts.Finished++
		case scheduler.Error:
			m.Counts.Errored++
		}
		m.Jobs = append(m.Jobs, r)
	}
	return m
}

// OK reports whether every node is Ready and every job Finished.
func (m *Manifest) OK() bool {
	return m.Counts.Failed == 0 && m.Counts.NotRun == 0 &&
		m.Counts.Errored == 0 && m.Counts.Finished == len(m.Jobs)
}

// Failed returns the results of the nodes that ended Failed.
func (m *Manifest) Failed() []NodeResult {
	var out []NodeResult
	for _, n := range m.Nodes {
		if n.State == node.Failed.String() {
			out = append(out, n)
		}
	}
	return out
}
