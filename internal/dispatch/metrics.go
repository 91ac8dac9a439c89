package dispatch

import "github.com/prometheus/client_golang/prometheus"

var (
	// dispatchMsgs counts dispatched messages by outcome (ignored|handled|failed).
	dispatchMsgs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_messages_total",
			Help: "Total number of inbound messages by dispatch outcome.",
		},
		[]string{"outcome"},
	)

	// dispatchErrs counts reported error conditions by kind.
	dispatchErrs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_errors_total",
			Help: "Total number of error conditions reported during dispatch.",
		},
		[]string{"kind"},
	)

	// dispatchLat records time spent in Dispatch for prefixed messages.
	dispatchLat = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Duration of command dispatch in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(dispatchMsgs, dispatchErrs, dispatchLat)
}
