// SkyIntel - Marketing Analytics Dashboard and AI Insights
// Copyright 2026 SkyIntel
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/skyintel/skyintel

// Package metrics registers the Prometheus instruments exported at
// /metrics. All collectors are registered with promauto on the default
// registry at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration observes handler latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyintel",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method, route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// HTTPRequestsInFlight tracks concurrently served requests.
	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "skyintel",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	// UpstreamRequests counts calls to external data sources by
	// source (ga4, ads, meta, openai) and outcome (ok, error,
	// rate_limited).
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyintel",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "External API calls by source and outcome.",
	}, []string{"source", "outcome"})

	// UpstreamRequestDuration observes upstream call latency.
	UpstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skyintel",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "External API call latency by source.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"source"})

	// BreakerState exports each circuit breaker's state as a gauge
	// (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "skyintel",
		Subsystem: "breaker",
		Name:      "state",
		Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"source"})

	// BreakerTransitions counts breaker state changes.
	BreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyintel",
		Subsystem: "breaker",
		Name:      "transitions_total",
		Help:      "Circuit breaker state transitions by source and new state.",
	}, []string{"source", "to"})

	// CacheOps counts query cache hits and misses.
	CacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyintel",
		Subsystem: "cache",
		Name:      "operations_total",
		Help:      "Query cache operations by result (hit, miss, set, evict).",
	}, []string{"result"})

	// InsightRequests counts LLM insight generations by panel and
	// outcome.
	InsightRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skyintel",
		Subsystem: "insight",
		Name:      "requests_total",
		Help:      "Insight generations by panel and outcome.",
	}, []string{"panel", "outcome"})
)
