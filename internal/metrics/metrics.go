// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yatube_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yatube_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	PageCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yatube_page_cache_hits_total",
			Help: "Total number of full-page cache hits",
		},
	)

	PageCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yatube_page_cache_misses_total",
			Help: "Total number of full-page cache misses",
		},
	)
)

// RecordPageCacheHit increments the page cache hit counter.
func RecordPageCacheHit() { PageCacheHits.Inc() }

// RecordPageCacheMiss increments the page cache miss counter.
func RecordPageCacheMiss() { PageCacheMisses.Inc() }
