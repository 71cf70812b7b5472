// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ledger"

// ─── Event store ────────────────────────────────────────────────────────────

var EventsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "eventstore",
	Name:      "events_appended_total",
	Help:      "Total events appended, by event kind.",
}, []string{"kind"})

var AppendConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "eventstore",
	Name:      "append_conflicts_total",
	Help:      "Total appends rejected by the optimistic concurrency check.",
})

var AppendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "eventstore",
	Name:      "append_duration_seconds",
	Help:      "Backend append latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"backend"})

// ─── Subscriptions ──────────────────────────────────────────────────────────

var DeliveryQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "subscription",
	Name:      "queue_depth",
	Help:      "Records queued but not yet handled, by subscription.",
}, []string{"subscription"})

var DeliveryRetries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "subscription",
	Name:      "retries_total",
	Help:      "Total failed handler attempts that were retried, by subscription.",
}, []string{"subscription"})

var DeadLetters = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "subscription",
	Name:      "dead_letters_total",
	Help:      "Total records parked after exhausting delivery attempts, by subscription.",
}, []string{"subscription"})

// ─── Projection ─────────────────────────────────────────────────────────────

var PostingsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "projection",
	Name:      "postings_recorded_total",
	Help:      "Total ledger postings written to the read model.",
})

var DuplicateDeliveries = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "projection",
	Name:      "duplicate_deliveries_total",
	Help:      "Total posted events skipped because they were already projected.",
})

// ─── HTTP ───────────────────────────────────────────────────────────────────

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "Total HTTP requests, by route and status code.",
}, []string{"route", "status"})

var HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency, by route.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// ObserveSince records the seconds elapsed since start on h.
func ObserveSince(h prometheus.Observer, start time.Time) {
	h.Observe(time.Since(start).Seconds())
}
