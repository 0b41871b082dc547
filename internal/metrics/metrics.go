// Package metrics exports provider, cache and capability activity to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arpita1049/Prashikshan-final/internal/career"
	"github.com/arpita1049/Prashikshan-final/internal/resilience"
)

// Metrics implements resilience.Observer and career.Recorder.
type Metrics struct {
	// ProviderAttempts counts provider attempts by label and result ("ok" or an error kind).
	ProviderAttempts *prometheus.CounterVec
	// ProviderLatency tracks per-attempt latency, including failed attempts.
	ProviderLatency *prometheus.HistogramVec
	// CacheLookups counts cache lookups by capability and result (hit|miss).
	CacheLookups *prometheus.CounterVec
	// Outcomes counts served capability calls by outcome (live|cache|demo|fallback).
	Outcomes *prometheus.CounterVec
}

var (
	_ resilience.Observer = (*Metrics)(nil)
	_ career.Recorder     = (*Metrics)(nil)
)

// New registers the collectors with reg. A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ProviderAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerai_provider_attempts_total",
				Help: "Total number of provider attempts",
			},
			[]string{"label", "result"},
		),
		ProviderLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "careerai_provider_attempt_seconds",
				Help:    "Provider attempt latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"label"},
		),
		CacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerai_cache_lookups_total",
				Help: "Total number of response cache lookups",
			},
			[]string{"capability", "result"},
		),
		Outcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerai_capability_outcomes_total",
				Help: "Total number of capability calls by how they were served",
			},
			[]string{"capability", "outcome"},
		),
	}
}

func (m *Metrics) ObserveAttempt(label string, _ int, err *resilience.Error, elapsed time.Duration) {
	result := "ok"
	if err != nil {
		result = string(err.Kind)
	}
	m.ProviderAttempts.WithLabelValues(label, result).Inc()
	m.ProviderLatency.WithLabelValues(label).Observe(elapsed.Seconds())
}

func (m *Metrics) CacheLookup(capability string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(capability, result).Inc()
}

func (m *Metrics) Outcome(capability string, outcome career.Outcome) {
	m.Outcomes.WithLabelValues(capability, string(outcome)).Inc()
}
