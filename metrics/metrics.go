// Package metrics records what a prefsync run did. prefsync exits after one
// run, so instead of serving /metrics the registry is dumped to a file in the
// node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "prefsync"

// Result labels for RunsTotal.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal        *prometheus.CounterVec
	LeavesSerialized prometheus.Counter
	KeysMerged       prometheus.Counter
	RunDuration      prometheus.Gauge
	LastRun          prometheus.Gauge
}

// New builds the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Preference update runs by result.",
		}, []string{"result"}),
		LeavesSerialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaves_serialized_total",
			Help:      "Default values encoded into preference strings.",
		}),
		KeysMerged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_merged_total",
			Help:      "Top-level keys written from the defaults document.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	m.Registry.MustRegister(m.RunsTotal, m.LeavesSerialized, m.KeysMerged, m.RunDuration, m.LastRun)
	return m
}

// ObserveRun records the outcome of one run.
func (m *Metrics) ObserveRun(start time.Time, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	now := time.Now()
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDuration.Set(now.Sub(start).Seconds())
	m.LastRun.Set(float64(now.Unix()))
}

// AddLeaves counts serialized leaves. Safe on a nil receiver.
func (m *Metrics) AddLeaves(n int) {
	if m == nil {
		return
	}
	m.LeavesSerialized.Add(float64(n))
}

// AddKeys counts merged top-level keys. Safe on a nil receiver.
func (m *Metrics) AddKeys(n int) {
	if m == nil {
		return
	}
	m.KeysMerged.Add(float64(n))
}

// WriteTextfile dumps the registry to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
