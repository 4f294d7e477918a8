// Package metrics holds the Prometheus collectors exported by the transfer proxy.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request metrics
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_proxy_requests_total",
			Help: "Total number of proxied transfer requests by route and status code",
		},
		[]string{"route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transfer_proxy_request_duration_seconds",
			Help:    "Time taken to serve a transfer request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Upstream metrics
var (
	UpstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "transfer_proxy_upstream_duration_seconds",
		Help:    "Time taken by the upstream indexing API to answer",
		Buckets: prometheus.DefBuckets,
	})

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfer_proxy_upstream_errors_total",
			Help: "Total number of upstream failures by kind",
		},
		[]string{"kind"},
	)
)

// Cache metrics
var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transfer_proxy_cache_hits_total",
		Help: "Total number of responses served from the cache",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "transfer_proxy_cache_misses_total",
		Help: "Total number of requests that had to go upstream",
	})
)
