// Package monitoring exposes breaker activity as Prometheus metrics
// and structured logs, wired into the registry through hook options so
// the core stays observability-agnostic.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fusegate/fusegate/internal/resilience"
)

// Metrics holds all breaker Prometheus metrics.
type Metrics struct {
	CallsTotal        *prometheus.CounterVec
	RejectionsTotal   *prometheus.CounterVec
	StateChangesTotal *prometheus.CounterVec
	BreakerState      *prometheus.GaugeVec
	CallDuration      *prometheus.HistogramVec
}

// New creates the metrics collector, registering with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fusegate_breaker_calls_total",
				Help: "Total calls attempted through a breaker, by result",
			},
			[]string{"breaker", "result"},
		),
		RejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fusegate_breaker_rejections_total",
				Help: "Calls refused admission because the breaker was open or over probe quota",
			},
			[]string{"breaker"},
		),
		StateChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fusegate_breaker_state_changes_total",
				Help: "Breaker state transitions",
			},
			[]string{"breaker", "from", "to"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fusegate_breaker_state",
				Help: "Current breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"breaker"},
		),
		CallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fusegate_breaker_call_duration_seconds",
				Help:    "Duration of calls attempted through a breaker",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"breaker"},
		),
	}
}

func stateValue(s resilience.State) float64 {
	switch s {
	case resilience.StateOpen:
		return 1
	case resilience.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// RecordCall records one attempted call.
func (m *Metrics) RecordCall(breaker string, elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.CallsTotal.WithLabelValues(breaker, result).Inc()
	m.CallDuration.WithLabelValues(breaker).Observe(elapsed.Seconds())
}

// RecordRejection records one refused admission.
func (m *Metrics) RecordRejection(breaker string) {
	m.RejectionsTotal.WithLabelValues(breaker).Inc()
}

// RecordStateChange records one state transition and updates the
// state gauge.
func (m *Metrics) RecordStateChange(breaker string, from, to resilience.State) {
	m.StateChangesTotal.WithLabelValues(breaker, from.String(), to.String()).Inc()
	m.BreakerState.WithLabelValues(breaker).Set(stateValue(to))
}
