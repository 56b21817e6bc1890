// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the agent service.
//
// # Description
//
// Metrics cover the two core operations (analyze, chat) plus crawl volume:
//   - Request counters by endpoint and status
//   - Request duration histograms
//   - Pages crawled and chunks indexed counters
//   - Error counters by endpoint and error type
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "webinsight"

// Subsystem for agent metrics
const agentSubsystem = "agent"

// AgentMetrics holds all Prometheus metrics for the agent service.
// Initialize once at startup via InitMetrics().
type AgentMetrics struct {
	// RequestsTotal counts requests by endpoint and status.
	// Labels: endpoint (analyze, chat), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures end-to-end request duration.
	// Labels: endpoint (analyze, chat)
	RequestDurationSeconds *prometheus.HistogramVec

	// PagesCrawledTotal counts pages fetched across all crawls.
	PagesCrawledTotal prometheus.Counter

	// ChunksIndexedTotal counts chunks written to the vector index.
	ChunksIndexedTotal prometheus.Counter

	// ErrorsTotal counts errors by type and endpoint.
	// Labels: endpoint, error_code (crawl, llm_error, validation, internal)
	ErrorsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of AgentMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *AgentMetrics

// InitMetrics creates and registers all Prometheus metrics. Call once at
// application startup; calling twice panics on duplicate registration.
func InitMetrics() *AgentMetrics {
	DefaultMetrics = &AgentMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: agentSubsystem,
				Name:      "requests_total",
				Help:      "Total number of requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		RequestDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: agentSubsystem,
				Name:      "request_duration_seconds",
				Help:      "End-to-end request duration in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"endpoint"},
		),

		PagesCrawledTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: agentSubsystem,
				Name:      "pages_crawled_total",
				Help:      "Total pages fetched across all crawls",
			},
		),

		ChunksIndexedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: agentSubsystem,
				Name:      "chunks_indexed_total",
				Help:      "Total chunks written to the vector index",
			},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: agentSubsystem,
				Name:      "errors_total",
				Help:      "Total errors by type and endpoint",
			},
			[]string{"endpoint", "error_code"},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode represents a categorized error type for metrics.
type ErrorCode string

const (
	// ErrorCodeCrawl indicates the target site could not be fetched.
	ErrorCodeCrawl ErrorCode = "crawl"

	// ErrorCodeValidation indicates request validation failure.
	ErrorCodeValidation ErrorCode = "validation"

	// ErrorCodeLLMError indicates LLM API failure.
	ErrorCodeLLMError ErrorCode = "llm_error"

	// ErrorCodeInternal indicates internal server error.
	ErrorCodeInternal ErrorCode = "internal"
)

// =============================================================================
// Endpoint Names
// =============================================================================

// Endpoint represents an endpoint for metrics labeling.
type Endpoint string

const (
	// EndpointAnalyze is the website analysis endpoint.
	EndpointAnalyze Endpoint = "analyze"

	// EndpointChat is the follow-up chat endpoint.
	EndpointChat Endpoint = "chat"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a completed request.
func (m *AgentMetrics) RecordRequest(endpoint Endpoint, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
}

// RecordError records an error occurrence.
func (m *AgentMetrics) RecordError(endpoint Endpoint, code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(endpoint), string(code)).Inc()
}

// RecordDuration records an end-to-end request duration.
func (m *AgentMetrics) RecordDuration(endpoint Endpoint, seconds float64) {
	m.RequestDurationSeconds.WithLabelValues(string(endpoint)).Observe(seconds)
}

// RecordCrawl records the page and chunk volume of one crawl-and-index run.
func (m *AgentMetrics) RecordCrawl(pages, chunks int) {
	m.PagesCrawledTotal.Add(float64(pages))
	m.ChunksIndexedTotal.Add(float64(chunks))
}
