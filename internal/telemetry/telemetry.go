// Package telemetry exposes Prometheus instrumentation for the turn
// pipeline. A nil *Metrics is valid and records nothing, so callers never
// guard their instrumentation sites.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline instruments. Construct with New and register
// the returned registry's handler on the HTTP server.
type Metrics struct {
	registry *prometheus.Registry

	turns         *prometheus.CounterVec
	turnDuration  prometheus.Histogram
	toolCalls     *prometheus.CounterVec
	retrievalHits prometheus.Histogram
	rejections    prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrdesk",
			Name:      "turns_total",
			Help:      "Completed turns by classified intent.",
		}, []string{"intent"}),
		turnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hrdesk",
			Name:      "turn_duration_seconds",
			Help:      "Wall time of one full turn.",
			Buckets:   prometheus.DefBuckets,
		}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hrdesk",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		retrievalHits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hrdesk",
			Name:      "retrieval_evidence_chunks",
			Help:      "Evidence chunks retrieved per policy turn.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8, 10},
		}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hrdesk",
			Name:      "compliance_rejections_total",
			Help:      "Policy answers replaced by the compliance validator.",
		}),
	}
	reg.MustRegister(m.turns, m.turnDuration, m.toolCalls, m.retrievalHits, m.rejections)
	return m
}

// Registry returns the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Metrics) ObserveTurn(intent string, started time.Time) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(intent).Inc()
	m.turnDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveTool(tool, outcome string) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
}

func (m *Metrics) ObserveEvidence(chunks int) {
	if m == nil {
		return
	}
	m.retrievalHits.Observe(float64(chunks))
}

func (m *Metrics) ObserveRejection() {
	if m == nil {
		return
	}
	m.rejections.Inc()
}
