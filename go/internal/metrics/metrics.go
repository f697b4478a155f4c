// Package metrics counts what the transaction engine commits and rejects.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder defines the interface for collecting engine metrics
type Recorder interface {
	RecordTransaction(txType string)
	RecordBidRejected(reason string)
	RecordTradesInvalidated(count int)
	RecordDeadlineUnit(deadlineType string, status string, duration time.Duration)
}

// NoOp is a no-op implementation for when metrics aren't needed
type NoOp struct{}

func (NoOp) RecordTransaction(txType string)                                               {}
func (NoOp) RecordBidRejected(reason string)                                               {}
func (NoOp) RecordTradesInvalidated(count int)                                             {}
func (NoOp) RecordDeadlineUnit(deadlineType string, status string, duration time.Duration) {}

// Prometheus implements Recorder with client_golang collectors
type Prometheus struct {
	gatherer          prometheus.Gatherer
	transactions      *prometheus.CounterVec
	bidsRejected      *prometheus.CounterVec
	tradesInvalidated prometheus.Counter
	deadlineUnits     *prometheus.CounterVec
	deadlineDuration  *prometheus.HistogramVec
}

// NewPrometheus registers the engine collectors with reg.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		gatherer: reg,
		transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "capspace",
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Committed ledger transactions by type",
		}, []string{"type"}),
		bidsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "capspace",
			Subsystem: "auction",
			Name:      "bids_rejected_total",
			Help:      "Rejected auction bids by reason",
		}, []string{"reason"}),
		tradesInvalidated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "capspace",
			Subsystem: "trade",
			Name:      "invalidated_total",
			Help:      "Open trades invalidated by a completed trade",
		}),
		deadlineUnits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "capspace",
			Subsystem: "deadline",
			Name:      "units_total",
			Help:      "Deadline batch units by deadline type and outcome",
		}, []string{"deadline_type", "status"}),
		deadlineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "capspace",
			Subsystem: "deadline",
			Name:      "unit_duration_seconds",
			Help:      "Time spent on one deadline batch unit",
			Buckets:   prometheus.DefBuckets,
		}, []string{"deadline_type"}),
	}
}

func (m *Prometheus) RecordTransaction(txType string) {
	m.transactions.WithLabelValues(txType).Inc()
}

func (m *Prometheus) RecordBidRejected(reason string) {
	m.bidsRejected.WithLabelValues(reason).Inc()
}

func (m *Prometheus) RecordTradesInvalidated(count int) {
	m.tradesInvalidated.Add(float64(count))
}

func (m *Prometheus) RecordDeadlineUnit(deadlineType string, status string, duration time.Duration) {
	m.deadlineUnits.WithLabelValues(deadlineType, status).Inc()
	m.deadlineDuration.WithLabelValues(deadlineType).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
