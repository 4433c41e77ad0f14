// Package metrics provides Prometheus metrics for the marker generator.
package metrics

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithConstLabels attaches fixed labels to every metric, e.g. the report and
// fight a run works on.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		for name, value := range labels {
			m.constLabels[name] = value
		}
	}
}
