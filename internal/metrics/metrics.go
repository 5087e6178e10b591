// Package metrics exposes Prometheus collectors for group formation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lunchclub"

// Outcome labels for FormationsTotal.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeInternalErr = "error"
)

// Metrics holds the collectors registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	FormationsTotal   *prometheus.CounterVec
	FormationDuration prometheus.Histogram
	GroupSize         prometheus.Histogram
	RepeatPairs       prometheus.Gauge
	RoundsCommitted   prometheus.Counter
}

// New creates and registers every collector, plus the Go runtime collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FormationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "formations_total",
			Help:      "Group formation attempts by outcome.",
		}, []string{"outcome"}),
		FormationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "formation_duration_seconds",
			Help:      "Time spent forming groups, including loading roster and history.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		GroupSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "group_size",
			Help:      "Sizes of formed lunch groups.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		RepeatPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "repeat_pairs",
			Help:      "Pairs in the latest formation that were already grouped inside the history window.",
		}),
		RoundsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_committed_total",
			Help:      "Rounds committed to storage.",
		}),
	}

	m.registry.MustRegister(
		m.FormationsTotal,
		m.FormationDuration,
		m.GroupSize,
		m.RepeatPairs,
		m.RoundsCommitted,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveFormation records a successful formation.
func (m *Metrics) ObserveFormation(started time.Time, sizes []int, repeatPairs int) {
	m.FormationsTotal.WithLabelValues(OutcomeOK).Inc()
	m.FormationDuration.Observe(time.Since(started).Seconds())
	for _, size := range sizes {
		m.GroupSize.Observe(float64(size))
	}
	m.RepeatPairs.Set(float64(repeatPairs))
}

// ObserveFailure records a failed formation with the given outcome label.
func (m *Metrics) ObserveFailure(outcome string) {
	m.FormationsTotal.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
