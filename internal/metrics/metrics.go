// Package metrics exports run activity to Prometheus. The Collector is a
// scheduler.Observer, so it sees every job and node as it finishes; it never
// feeds back into scheduling.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/gridwalk/internal/node"
	"github.com/specialistvlad/gridwalk/internal/scheduler"
)

const namespace = "gridwalk"

// Collector holds the run metrics.
type Collector struct {
	jobsStarted  prometheus.Counter
	jobsFinished *prometheus.CounterVec
	jobsActive   prometheus.Gauge
	jobDuration  prometheus.Histogram

	nodesFinished *prometheus.CounterVec
	nodeDuration  *prometheus.HistogramVec
}

var _ scheduler.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them on reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		jobsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_started_total",
			Help:      "Total number of jobs started.",
		}),
		jobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_finished_total",
			Help:      "Total number of jobs finished, by final health flag.",
		}, []string{"flag"}),
		jobsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "jobs_active",
			Help:      "Current number of running jobs.",
		}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Job run time in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		nodesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_finished_total",
			Help:      "Total number of nodes that reached a terminal state, by state and kind.",
		}, []string{"state", "kind"}),
		nodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_duration_seconds",
			Help:      "Node work run time in seconds, by kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}

	for _, m := range []prometheus.Collector{
		c.jobsStarted, c.jobsFinished, c.jobsActive, c.jobDuration,
		c.nodesFinished, c.nodeDuration,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// JobStarted implements scheduler.Observer.
func (c *Collector) JobStarted(_ context.Context, _ *scheduler.JobDetail) {
	c.jobsStarted.Inc()
	c.jobsActive.Inc()
}

// JobFinished implements scheduler.Observer.
func (c *Collector) JobFinished(_ context.Context, job *scheduler.JobDetail) {
	h := job.Health()
	c.jobsActive.Dec()
	c.jobsFinished.WithLabelValues(h.Flag().String()).Inc()
	c.jobDuration.Observe(h.Duration().Seconds())
}

// NodeFinished implements traversal.NodeObserver. Nodes that never ran only
// count towards nodes_finished_total.
func (c *Collector) NodeFinished(_ context.Context, s node.Status) {
	c.nodesFinished.WithLabelValues(s.State.String(), s.Kind).Inc()
	if !s.StartedAt.IsZero() {
		c.nodeDuration.WithLabelValues(s.Kind).Observe(s.Duration().Seconds())
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
