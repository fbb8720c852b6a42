// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics declares the Prometheus collectors for provider traffic,
// bulk fetches, the response cache, and the HTTP front.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gourmet_upstream_requests_total",
			Help: "Provider requests by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gourmet_upstream_request_duration_seconds",
			Help:    "Provider request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	FanOutPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gourmet_fanout_pages",
			Help:    "Number of page requests issued per bulk fetch",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		},
	)

	FanOutFailedPages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gourmet_fanout_failed_pages_total",
			Help: "Fan-out page requests that failed and were dropped from the merge",
		},
	)

	DuplicatesRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gourmet_fanout_duplicates_removed_total",
			Help: "Records dropped by identifier deduplication during fan-in",
		},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gourmet_cache_lookups_total",
			Help: "Response cache lookups by kind and result",
		},
		[]string{"kind", "result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gourmet_http_requests_total",
			Help: "HTTP requests served by route and status",
		},
		[]string{"route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gourmet_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
