// Package metrics collects per-run counters and writes them in the
// node_exporter textfile collector format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "imagelink"

// Recorder holds the metrics of one run on a private registry.
type Recorder struct {
	registry *prometheus.Registry
	files    *prometheus.CounterVec
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
	start    time.Time
	now      func() time.Time
}

// NewRecorder registers the run metrics. outcomes are pre-initialized so
// every series is present even when zero.
func NewRecorder(outcomes ...string) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_total",
				Help:      "Input files processed, by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		now: time.Now,
	}
	r.registry.MustRegister(r.files, r.duration, r.lastRun)
	for _, o := range outcomes {
		r.files.WithLabelValues(o)
	}
	r.start = r.now()
	return r
}

// Observe counts one file with the given outcome.
func (r *Recorder) Observe(outcome string) {
	r.files.WithLabelValues(outcome).Inc()
}

// Finish sets the duration and timestamp gauges.
func (r *Recorder) Finish() {
	end := r.now()
	r.duration.Set(end.Sub(r.start).Seconds())
	r.lastRun.Set(float64(end.UnixNano()) / 1e9)
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes all metrics to path, atomically replacing it.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
