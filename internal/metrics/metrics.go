package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch counters. Runs counts trigger firings on the elected leader;
// Sent/Failed count per-record gateway outcomes.
var (
	DispatchRuns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "varsity",
		Subsystem: "dispatch",
		Name:      "runs_total",
		Help:      "Number of notification dispatch runs executed.",
	})

	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "varsity",
		Subsystem: "dispatch",
		Name:      "notifications_sent_total",
		Help:      "Notifications delivered to the push gateway.",
	})

	NotificationsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "varsity",
		Subsystem: "dispatch",
		Name:      "notifications_failed_total",
		Help:      "Notifications whose gateway delivery failed and were left active for retry.",
	})
)

// HTTPRequests counts requests by route pattern and status class.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "varsity",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests served.",
}, []string{"route", "status"})
