// Package metrics exposes Prometheus counters for puzzle sessions.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "railpuzzle"

// Interaction outcomes
const (
	OutcomeChanged   = "changed"
	OutcomeUnchanged = "unchanged"
	OutcomeRejected  = "rejected"
)

// Metrics holds the collectors of one process on a private registry
type Metrics struct {
	registry        *prometheus.Registry
	interactions    *prometheus.CounterVec
	solved          *prometheus.CounterVec
	sessionsCreated *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	solveDuration   *prometheus.HistogramVec
}

// New creates and registers the collectors, together with the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		interactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_total",
				Help:      "Total number of cell interactions",
			},
			[]string{"difficulty", "outcome"},
		),
		solved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "puzzles_solved_total",
				Help:      "Total number of solved puzzles",
			},
			[]string{"difficulty"},
		),
		sessionsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_created_total",
				Help:      "Total number of game sessions created",
			},
			[]string{"difficulty"},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Number of sessions currently held in memory",
			},
		),
		solveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "solve_duration_seconds",
				Help:      "Time from session creation to a solved board",
				Buckets:   []float64{15, 30, 60, 120, 300, 600, 1200, 3600},
			},
			[]string{"difficulty"},
		),
	}

	m.registry.MustRegister(
		m.interactions,
		m.solved,
		m.sessionsCreated,
		m.activeSessions,
		m.solveDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Interaction records one interaction outcome
func (m *Metrics) Interaction(difficulty, outcome string) {
	if m == nil {
		return
	}
	m.interactions.WithLabelValues(difficulty, outcome).Inc()
}

// Solved records a solved puzzle and how long it took
func (m *Metrics) Solved(difficulty string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.solved.WithLabelValues(difficulty).Inc()
	m.solveDuration.WithLabelValues(difficulty).Observe(elapsed.Seconds())
}

// SessionCreated records a new session
func (m *Metrics) SessionCreated(difficulty string) {
	if m == nil {
		return
	}
	m.sessionsCreated.WithLabelValues(difficulty).Inc()
}

// SetActiveSessions sets the active session gauge
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
