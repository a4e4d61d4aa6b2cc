// GoodWatch - Hybrid Streaming Discovery and Recommendation
// Copyright 2026 GoodWatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alp82/goodwatch-monorepo-sub000

// Package metrics provides Prometheus instrumentation for the query engine:
// relational query performance, vector index calls, and discovery requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DBQueryDuration tracks DuckDB query latency per operation and table.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goodwatch_db_query_duration_seconds",
			Help:    "Duration of media store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// DBQueryErrors counts media store query failures.
	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_db_query_errors_total",
			Help: "Total number of media store query errors",
		},
		[]string{"operation", "table"},
	)

	// VectorCallDuration tracks ANN recommend call latency.
	VectorCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "goodwatch_vector_call_duration_seconds",
			Help:    "Duration of vector index recommend calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// VectorCallErrors counts vector index call failures by reason.
	VectorCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_vector_call_errors_total",
			Help: "Total number of vector index call failures",
		},
		[]string{"reason"}, // "request", "status", "breaker_open"
	)

	// DiscoverRequests counts discovery engine requests by mode and outcome.
	DiscoverRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_discover_requests_total",
			Help: "Total number of discovery requests",
		},
		[]string{"mode", "status"}, // mode: "filter", "similar"; status: "ok", "partial", "empty", "error"
	)

	// RecommendRequests counts recommendation scorer requests by outcome.
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"status"},
	)
)

// ObserveDBQuery records one relational query observation.
func ObserveDBQuery(operation, table string, start time.Time, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}
