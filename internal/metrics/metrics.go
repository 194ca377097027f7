// Huddle - Agency Back-Office and Sales Pipeline API
// Copyright 2026 Agency Ops
// SPDX-License-Identifier: MIT

// Package metrics exposes the Prometheus instrumentation for the API:
// request throughput and latency, database query timing, and object
// storage uploads.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pg_query_duration_seconds",
			Help:    "Duration of PostgreSQL queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pg_query_errors_total",
			Help: "Total number of PostgreSQL query errors",
		},
		[]string{"operation"},
	)

	DBPoolAcquired = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pg_pool_acquired_connections",
			Help: "Connections currently acquired from the pool",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Preview / Object Storage Metrics
	PreviewUploadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "preview_upload_duration_seconds",
			Help:    "Duration of preview PDF uploads to object storage",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PreviewUploadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "preview_upload_errors_total",
			Help: "Total number of failed preview uploads",
		},
	)

	PreviewBreakerOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "preview_storage_breaker_open",
			Help: "1 when the object storage circuit breaker is open",
		},
	)
)

// RecordDBQuery records a query duration and, when it failed, an error.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordPreviewUpload records an upload duration and failure.
func RecordPreviewUpload(duration time.Duration, err error) {
	PreviewUploadDuration.Observe(duration.Seconds())
	if err != nil {
		PreviewUploadErrors.Inc()
	}
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
