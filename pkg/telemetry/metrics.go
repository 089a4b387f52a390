package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rulemap"

// Metrics holds the metrics recorded during one run
type Metrics struct {
	registry *prometheus.Registry

	NodesFlattened    prometheus.Gauge
	BehaviorsTotal    *prometheus.GaugeVec
	MappingEntries    prometheus.Gauge
	CoverageExcess    prometheus.Gauge
	StageDuration     *prometheus.GaugeVec
	LastRunTimestamp  prometheus.Gauge
	LastRunSuccessful prometheus.Gauge
}

// NewMetrics creates a fresh registry with all run metrics registered
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		NodesFlattened: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes_flattened",
			Help:      "Rule nodes captured as flattened records.",
		}),
		BehaviorsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "behaviors",
			Help:      "Behaviors declared across flattened nodes, by mapping result.",
		}, []string{"result"}),
		MappingEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mapping_entries",
			Help:      "Entries in the fetched mapping table.",
		}),
		CoverageExcess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "coverage_excess_children",
			Help:      "Child names seen during traversal beyond those attached to flattened nodes.",
		}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage.",
		}, []string{"stage"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		LastRunSuccessful: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run produced a report, 0 otherwise.",
		}),
	}

	m.registry.MustRegister(
		m.NodesFlattened,
		m.BehaviorsTotal,
		m.MappingEntries,
		m.CoverageExcess,
		m.StageDuration,
		m.LastRunTimestamp,
		m.LastRunSuccessful,
	)
	return m
}

// ObserveStage records how long a stage took
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// Finish stamps the run outcome
func (m *Metrics) Finish(success bool, at time.Time) {
	m.LastRunTimestamp.Set(float64(at.Unix()))
	if success {
		m.LastRunSuccessful.Set(1)
	} else {
		m.LastRunSuccessful.Set(0)
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format.
// The write goes through a temp file and rename, as the textfile collector expects.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
