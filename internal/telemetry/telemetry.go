// Package telemetry defines the Prometheus collectors for the service.
// Everything registers on a private registry so tests can create
// instances freely without duplicate-registration panics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the collectors used across the recommendation pipeline
// and the agent loop.
type Metrics struct {
	registry *prometheus.Registry

	Recommendations   *prometheus.CounterVec // labeled by outcome
	RecommendDuration prometheus.Histogram
	VenuesReturned    prometheus.Histogram

	AgentRuns    *prometheus.CounterVec // labeled by final state
	AgentSteps   prometheus.Histogram
	ToolCalls    *prometheus.CounterVec // labeled by tool, outcome
	UpstreamHits *prometheus.CounterVec // labeled by endpoint, outcome
}

// New builds the metric set on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetspot_recommendations_total",
			Help: "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		RecommendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meetspot_recommend_duration_seconds",
			Help:    "End to end recommendation latency.",
			Buckets: prometheus.DefBuckets,
		}),
		VenuesReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meetspot_venues_returned",
			Help:    "Venues in the final ranked list.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		AgentRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetspot_agent_runs_total",
			Help: "Agent runs by final state.",
		}, []string{"state"}),
		AgentSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meetspot_agent_steps",
			Help:    "Steps consumed per agent run.",
			Buckets: []float64{1, 2, 3, 5, 8, 10, 15},
		}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetspot_tool_calls_total",
			Help: "Tool invocations by tool and outcome.",
		}, []string{"tool", "outcome"}),
		UpstreamHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetspot_upstream_requests_total",
			Help: "Map provider requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
	}
	reg.MustRegister(
		m.Recommendations, m.RecommendDuration, m.VenuesReturned,
		m.AgentRuns, m.AgentSteps, m.ToolCalls, m.UpstreamHits,
	)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
