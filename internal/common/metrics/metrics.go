// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_requests_total",
			Help: "Total number of recommendation requests served",
		},
		[]string{"place_type", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "concierge_request_duration_seconds",
			Help: "Duration of recommendation request handling in seconds",
		},
		[]string{"place_type"},
	)

	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_upstream_calls_total",
			Help: "Total number of upstream provider calls",
		},
		[]string{"provider", "outcome"},
	)

	EnrichmentDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_enrichment_drops_total",
			Help: "Total number of candidates dropped during enrichment",
		},
		[]string{"stage"},
	)
)
