package metrics

import (
	"maps"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace replaces the "tally" namespace. Blank values are ignored.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if ns := strings.TrimSpace(namespace); ns != "" {
			m.namespace = ns
		}
	}
}

// WithSubsystem replaces the "attendance" subsystem. Blank values are ignored.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if sub := strings.TrimSpace(subsystem); sub != "" {
			m.subsystem = sub
		}
	}
}

// WithHistogramBuckets sets the millisecond buckets used by bridge, refresh
// and summary latency histograms. Buckets are copied and sorted.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) == 0 {
			return
		}
		b := slices.Clone(buckets)
		slices.Sort(b)
		m.histogramBuckets = slices.Compact(b)
	}
}

// WithConstLabels attaches fixed labels, such as a deployment name, to every metric.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) > 0 {
			m.constLabels = prometheus.Labels(maps.Clone(labels))
		}
	}
}

// WithPrometheusRegistry registers metrics on registry instead of the default registerer.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
