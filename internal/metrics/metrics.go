// Package metrics holds Prometheus instruments that are used across the
// site.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Lead outcomes recorded under the "outcome" label.
const (
	OutcomeAccepted      = "accepted"
	OutcomeInvalid       = "invalid"
	OutcomeConfigError   = "config_error"
	OutcomeUpstreamError = "upstream_error"
)

var (
	LeadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "propertysite_leads_total",
			Help: "Lead submissions handled by the intake endpoint, by form type and outcome.",
		}, []string{"form_type", "outcome"})

	SheetAppendSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "propertysite_sheet_append_seconds",
			Help:    "Latency of spreadsheet row appends.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		})

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "propertysite_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter.",
		})
)

func init() {
	prometheus.MustRegister(
		LeadsTotal,
		SheetAppendSeconds,
		RateLimitedTotal,
	)
}

// Lead counts one intake outcome.
func Lead(formType, outcome string) {
	LeadsTotal.WithLabelValues(formType, outcome).Inc()
}

// ObserveAppend records how long an append took since start.
func ObserveAppend(start time.Time) {
	SheetAppendSeconds.Observe(time.Since(start).Seconds())
}
