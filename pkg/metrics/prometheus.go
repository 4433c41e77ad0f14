// Package metrics provides Prometheus metrics for the marker generator.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric name prefix: markergen_pipeline_*.
const (
	namespace = "markergen"
	subsystem = "pipeline"
)

// Manager manages all Prometheus metrics for one generator process.
type Manager struct {
	constLabels map[string]string
	registry    *prometheus.Registry

	// Stream Metrics - how much of each stream survives cleaning
	eventsFetched  *prometheus.CounterVec
	markersKept    *prometheus.CounterVec
	markersDropped *prometheus.CounterVec

	// Packing Metrics
	tracksAssigned prometheus.Gauge
	markersPlaced  *prometheus.CounterVec

	// Report API Metrics
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec

	// Pipeline Metrics
	stageDuration *prometheus.HistogramVec
	errors        *prometheus.CounterVec
}

var (
	globalMu      sync.RWMutex //nolint:gochecknoglobals // guards the singleton manager
	globalManager *Manager     //nolint:gochecknoglobals // intentional global for singleton metrics manager
)

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager()
}

// NewManager creates a new metrics manager on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		constLabels: map[string]string{},
		registry:    prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsFetched = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "events_fetched_total",
		Help:        "Raw events received from the report API by stream",
		ConstLabels: m.constLabels,
	}, []string{"stream"})

	m.markersKept = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "markers_kept_total",
		Help:        "Markers surviving deduplication by stream",
		ConstLabels: m.constLabels,
	}, []string{"stream"})

	m.markersDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "markers_dropped_total",
		Help:        "Events discarded while building markers by stream and reason",
		ConstLabels: m.constLabels,
	}, []string{"stream", "reason"})

	m.tracksAssigned = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "tracks_assigned",
		Help:        "Number of packed tracks produced by the last run, excluding the untargetable track",
		ConstLabels: m.constLabels,
	})

	m.markersPlaced = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "markers_placed_total",
		Help:        "Markers placed on tracks by track index",
		ConstLabels: m.constLabels,
	}, []string{"track"})

	m.apiRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "api_requests_total",
		Help:        "Report API requests by endpoint and status code",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "status_code"})

	m.apiRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "api_request_duration_seconds",
		Help:        "Report API request latency in seconds",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint"})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "stage_duration_seconds",
		Help:        "Duration of pipeline stages in seconds",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: m.constLabels,
	}, []string{"stage"})

	m.errors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        "errors_total",
		Help:        "Errors by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "error_type"})
}

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordEventsFetched adds n raw events received for stream.
func (m *Manager) RecordEventsFetched(stream string, n int) {
	m.eventsFetched.WithLabelValues(stream).Add(float64(n))
}

// RecordMarkersKept adds n markers retained for stream.
func (m *Manager) RecordMarkersKept(stream string, n int) {
	m.markersKept.WithLabelValues(stream).Add(float64(n))
}

// RecordMarkerDropped counts one discarded event.
func (m *Manager) RecordMarkerDropped(stream, reason string) {
	m.markersDropped.WithLabelValues(stream, reason).Inc()
}

// UpdateTracksAssigned sets the number of packed tracks.
func (m *Manager) UpdateTracksAssigned(n int) {
	m.tracksAssigned.Set(float64(n))
}

// RecordMarkerPlaced counts one marker placed on track.
func (m *Manager) RecordMarkerPlaced(track int) {
	m.markersPlaced.WithLabelValues(fmt.Sprint(track)).Inc()
}

// RecordAPIRequest records one report API request.
func (m *Manager) RecordAPIRequest(endpoint, statusCode string, seconds float64) {
	m.apiRequests.WithLabelValues(endpoint, statusCode).Inc()
	m.apiRequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordStageDuration records how long a pipeline stage took.
func (m *Manager) RecordStageDuration(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordError records an error with component and type labels.
func (m *Manager) RecordError(component, errorType string) {
	m.errors.WithLabelValues(component, errorType).Inc()
}

// WriteTextfile writes the registry in the Prometheus text format, for the
// node_exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}

// SetGlobal replaces the manager used by the package-level helpers.
func SetGlobal(m *Manager) {
	if m == nil {
		return
	}
	globalMu.Lock()
	globalManager = m
	globalMu.Unlock()
}

// Global returns the manager used by the package-level helpers.
func Global() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// RecordEventsFetched adds n raw events received for stream.
func RecordEventsFetched(stream string, n int) { Global().RecordEventsFetched(stream, n) }

// RecordMarkersKept adds n markers retained for stream.
func RecordMarkersKept(stream string, n int) { Global().RecordMarkersKept(stream, n) }

// RecordMarkerDropped counts one discarded event.
func RecordMarkerDropped(stream, reason string) { Global().RecordMarkerDropped(stream, reason) }

// UpdateTracksAssigned sets the number of packed tracks.
func UpdateTracksAssigned(n int) { Global().UpdateTracksAssigned(n) }

// RecordMarkerPlaced counts one marker placed on track.
func RecordMarkerPlaced(track int) { Global().RecordMarkerPlaced(track) }

// RecordAPIRequest records one report API request.
func RecordAPIRequest(endpoint, statusCode string, seconds float64) {
	Global().RecordAPIRequest(endpoint, statusCode, seconds)
}

// RecordStageDuration records how long a pipeline stage took.
func RecordStageDuration(stage string, seconds float64) { Global().RecordStageDuration(stage, seconds) }

// RecordError records an error with component and type labels.
func RecordError(component, errorType string) { Global().RecordError(component, errorType) }

// WriteTextfile exports the global registry to path.
func WriteTextfile(path string) error { return Global().WriteTextfile(path) }
