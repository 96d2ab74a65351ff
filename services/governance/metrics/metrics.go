// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package metrics provides Prometheus instrumentation for the
// governance pipeline.
//
// # Description
//
// Metrics cover the three questions operators actually ask of this
// system: what is being decided (decisions by action), how risky is
// the traffic (score distribution, signals by category), and is the
// audit path healthy (append retries).
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal
// locking.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace  = "relasi4warna"
	pipelineSubsystem = "governance"
)

// PipelineMetrics holds all Prometheus metrics for content evaluation.
//
// Initialize once at startup via New(); pass a fresh registry in tests
// to avoid duplicate registration panics.
type PipelineMetrics struct {
	// DecisionsTotal counts dispositions by action and content type.
	// Labels: action (allow, enqueue, block), content_type
	DecisionsTotal *prometheus.CounterVec

	// RiskScore observes the continuous risk score of every
	// evaluation.
	RiskScore prometheus.Histogram

	// SignalsTotal counts raised risk signals by category.
	// Labels: category (self_harm, abuse, hate, ...)
	SignalsTotal *prometheus.CounterVec

	// EvaluationSeconds measures end-to-end pipeline latency.
	// Labels: status (success, error)
	EvaluationSeconds *prometheus.HistogramVec

	// QueueDepth tracks the number of items awaiting review.
	QueueDepth prometheus.Gauge

	// AuditRetriesTotal counts audit append retry attempts.
	AuditRetriesTotal prometheus.Counter
}

// New creates and registers the pipeline metrics on the given
// registerer. A nil registerer uses the Prometheus default registry.
func New(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PipelineMetrics{
		DecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "decisions_total",
				Help:      "Total dispositions by action and content type",
			},
			[]string{"action", "content_type"},
		),

		RiskScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "risk_score",
				Help:      "Distribution of continuous risk scores",
				Buckets:   []float64{0, 5, 10, 25, 50, 75, 90, 100},
			},
		),

		SignalsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "signals_total",
				Help:      "Total risk signals raised by category",
			},
			[]string{"category"},
		),

		EvaluationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "evaluation_seconds",
				Help:      "End-to-end content evaluation latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"status"},
		),

		QueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "queue_depth",
				Help:      "Number of moderation queue items awaiting review",
			},
		),

		AuditRetriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "audit_retries_total",
				Help:      "Total audit append retry attempts",
			},
		),
	}
}

// RecordDecision records one disposition.
func (m *PipelineMetrics) RecordDecision(action, contentType string) {
	m.DecisionsTotal.WithLabelValues(action, contentType).Inc()
}

// RecordAssessment records the score and signal categories of one
// evaluation.
func (m *PipelineMetrics) RecordAssessment(score float64, categories []string) {
	m.RiskScore.Observe(score)
	for _, category := range categories {
		m.SignalsTotal.WithLabelValues(category).Inc()
	}
}

// RecordEvaluation records end-to-end latency for one evaluation.
func (m *PipelineMetrics) RecordEvaluation(seconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.EvaluationSeconds.WithLabelValues(status).Observe(seconds)
}
