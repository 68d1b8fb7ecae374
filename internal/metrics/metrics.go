package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestTotal counts HTTP requests by method, route and status.
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	// RequestDuration is the latency of HTTP requests.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	// SiblingRequests counts outbound calls by service and outcome (ok, error, throttled).
	SiblingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_sibling_requests_total",
			Help: "Total number of calls to sibling services",
		},
		[]string{"service", "outcome"},
	)
	SiblingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_sibling_request_duration_seconds",
			Help:    "Sibling service call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	// DelegatedResultSize tracks how many records delegated pagination had to materialise.
	DelegatedResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_delegated_result_size",
			Help:    "Records materialised for delegated-rank pagination",
			Buckets: prometheus.ExponentialBuckets(10, 4, 7),
		},
	)
)
