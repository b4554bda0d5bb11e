package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "prediction_market"

var (
	// TxAttempts counts individual transaction submissions, including retries.
	TxAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tx",
		Name:      "attempts_total",
		Help:      "Transaction attempts made by the execution pipeline.",
	})

	// TxOutcomes counts finished pipeline runs by result.
	TxOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tx",
		Name:      "outcomes_total",
		Help:      "Execution pipeline results by outcome.",
	}, []string{"outcome"})

	// SessionEvents counts wallet events handled by the session manager.
	SessionEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "wallet_events_total",
		Help:      "Wallet events processed by the session manager.",
	}, []string{"kind"})

	// SessionReloads counts full session rebuilds.
	SessionReloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "reloads_total",
		Help:      "Full session reloads.",
	})

	// CommentsCreated counts stored comments.
	CommentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "comments",
		Name:      "created_total",
		Help:      "Comments stored.",
	})

	// HTTPRequestDuration observes API latency.
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

var registerOnce sync.Once

// MustRegisterMetrics registers all collectors with the default registry.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			TxAttempts,
			TxOutcomes,
			SessionEvents,
			SessionReloads,
			CommentsCreated,
			HTTPRequestDuration,
		)
	})
}
