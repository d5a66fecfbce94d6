// Package metrics records batch outcomes and stage latencies as Prometheus
// collectors and can dump them in text exposition format when a run ends.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/backmassage/pixelbatch/internal/task"
)

const namespace = "pixelbatch"

// Recorder owns the batch collectors. A nil *Recorder is valid and records
// nothing, so callers never need to guard.
type Recorder struct {
	registry      *prometheus.Registry
	tasks         *prometheus.CounterVec
	taskDuration  prometheus.Histogram
	stageDuration *prometheus.HistogramVec
	outputBytes   prometheus.Counter
	workers       prometheus.Gauge
}

// New registers the batch collectors on a fresh registry.
func New() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Tasks completed, by outcome.",
		}, []string{"status"}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Wall time per task from decode to encode.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per filter stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"stage"}),
		outputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_bytes_total",
			Help:      "Bytes written to the output tree.",
		}),
		workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Configured worker count for the run.",
		}),
	}
	for _, c := range []prometheus.Collector{r.tasks, r.taskDuration, r.stageDuration, r.outputBytes, r.workers} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return r, nil
}

// Registry exposes the underlying registry (for tests and custom exporters).
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// SetWorkers records the configured worker count.
func (r *Recorder) SetWorkers(n int) {
	if r == nil {
		return
	}
	r.workers.Set(float64(n))
}

// ObserveResult counts res by status and records its latency and size.
func (r *Recorder) ObserveResult(res task.Result) {
	if r == nil {
		return
	}
	r.tasks.WithLabelValues(res.Status.String()).Inc()
	r.taskDuration.Observe(res.Elapsed.Seconds())
	if res.IsSuccess() && res.OutputSize > 0 {
		r.outputBytes.Add(float64(res.OutputSize))
	}
}

// ObserveStage records one filter stage duration. Its signature matches
// filter.StageObserver.
func (r *Recorder) ObserveStage(stage string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// WriteFile writes every collected metric to path in Prometheus text format.
func (r *Recorder) WriteFile(path string) error {
	if r == nil {
		return errors.New("metrics disabled")
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
