// Package metrics exposes Prometheus instrumentation for the graph engine:
// active voice counts, scheduler timing, and streaming cache behavior.
// Grounded on the teacher's internal/observability/metrics constructor
// pattern (NewXMetrics(registry) (*XMetrics, error), one Gauge, Counter or
// Histogram per concern, registered eagerly so duplicate registration is caught at
// startup rather than at first Record call).
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics holds every Prometheus collector the graph engine touches.
type EngineMetrics struct {
	activeVoices      prometheus.Gauge
	voiceStealsTotal  prometheus.Counter
	schedulerDuration prometheus.Histogram
	nodesEvaluated    prometheus.Counter

	streamChunkReadsTotal prometheus.Counter
	streamCacheMisses     prometheus.Counter
	prefetchQueueDepth    prometheus.Gauge
}

// NewEngineMetrics creates and registers the engine's collectors against the
// given registry. Passing a fresh prometheus.NewRegistry() per test keeps
// tests isolated from the package-level default registry.
func NewEngineMetrics(registry prometheus.Registerer) (*EngineMetrics, error) {
	m := &EngineMetrics{
		activeVoices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "audiograph",
			Subsystem: "voice",
			Name:      "active",
			Help:      "Number of voices currently sounding (gated and releasing).",
		}),
		voiceStealsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "audiograph",
			Subsystem: "voice",
			Name:      "steals_total",
			Help:      "Number of times an active voice was reclaimed for a new gate-on.",
		}),
		schedulerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "audiograph",
			Subsystem: "scheduler",
			Name:      "process_seconds",
			Help:      "Wall time spent in one Processor.Process callback.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
		nodesEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "audiograph",
			Subsystem: "scheduler",
			Name:      "nodes_evaluated_total",
			Help:      "Total number of node evaluations across all Process calls.",
		}),
		streamChunkReadsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "audiograph",
			Subsystem: "stream",
			Name:      "chunk_reads_total",
			Help:      "Total number of chunks read from disk by the prefetch worker.",
		}),
		streamCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "audiograph",
			Subsystem: "stream",
			Name:      "cache_misses_total",
			Help:      "Number of times Process needed a chunk the prefetch worker had not finished loading.",
		}),
		prefetchQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "audiograph",
			Subsystem: "stream",
			Name:      "prefetch_queue_depth",
			Help:      "Current number of pending prefetch requests.",
		}),
	}

	collectors := []prometheus.Collector{
		m.activeVoices,
		m.voiceStealsTotal,
		m.schedulerDuration,
		m.nodesEvaluated,
		m.streamChunkReadsTotal,
		m.streamCacheMisses,
		m.prefetchQueueDepth,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering engine metric: %w", err)
		}
	}

	return m, nil
}

// SetActiveVoices records the current count of gated-or-releasing voices.
func (m *EngineMetrics) SetActiveVoices(n int) {
	m.activeVoices.Set(float64(n))
}

// RecordVoiceSteal increments the voice-steal counter by one.
func (m *EngineMetrics) RecordVoiceSteal() {
	m.voiceStealsTotal.Inc()
}

// ObserveSchedulerDuration records the wall time of one Process callback.
func (m *EngineMetrics) ObserveSchedulerDuration(seconds float64) {
	m.schedulerDuration.Observe(seconds)
}

// AddNodesEvaluated increments the node-evaluation counter by n.
func (m *EngineMetrics) AddNodesEvaluated(n int) {
	m.nodesEvaluated.Add(float64(n))
}

// RecordChunkRead increments the chunk-read counter by one.
func (m *EngineMetrics) RecordChunkRead() {
	m.streamChunkReadsTotal.Inc()
}

// RecordCacheMiss increments the streaming cache-miss counter by one.
func (m *EngineMetrics) RecordCacheMiss() {
	m.streamCacheMisses.Inc()
}

// SetPrefetchQueueDepth records the current prefetch queue length.
func (m *EngineMetrics) SetPrefetchQueueDepth(n int) {
	m.prefetchQueueDepth.Set(float64(n))
}

// ActiveVoicesForTest exposes the active-voices gauge for assertions in
// package metrics_test, mirroring the teacher's WithLabelValues test access.
func (m *EngineMetrics) ActiveVoicesForTest() prometheus.Gauge { return m.activeVoices }

// VoiceStealsForTest exposes the voice-steal counter for assertions.
func (m *EngineMetrics) VoiceStealsForTest() prometheus.Counter { return m.voiceStealsTotal }
