// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome attribute values.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Metrics contains the explainer's instruments.
//
// Description:
//
//	All instruments use the "explainer_" prefix. Histograms report seconds.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// --- HTTP Metrics ---

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// --- Analysis Metrics ---

	// ExplainRequestsTotal counts explain calls by outcome.
	ExplainRequestsTotal metric.Int64Counter

	// AnalysisDuration records time spent in Analyzer.Analyze. Request
	// binding and the model gate are excluded; see HTTPRequestDuration.
	AnalysisDuration metric.Float64Histogram

	// LinesExplainedTotal counts explained lines by classifier rule.
	LinesExplainedTotal metric.Int64Counter

	// ComplexityTotal counts submissions by complexity label.
	ComplexityTotal metric.Int64Counter

	// ImprovementsTotal counts computed improvement summaries.
	ImprovementsTotal metric.Int64Counter

	// --- Model Metrics ---

	ModelLoadsTotal   metric.Int64Counter
	ModelLoadDuration metric.Float64Histogram

	// --- Error Metrics ---

	// ErrorsTotal counts errors by component.
	ErrorsTotal metric.Int64Counter
}

// NewMetrics registers every instrument with meter.
//
// Example:
//
//	metrics, err := telemetry.NewMetrics(otel.Meter("explainer"))
//	if err != nil {
//	    return fmt.Errorf("create metrics: %w", err)
//	}
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"explainer_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"explainer_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, fmt.Errorf("create http_request_duration: %w", err)
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"explainer_http_active_requests",
		metric.WithDescription("Currently active HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("create http_active_requests: %w", err)
	}

	if m.ExplainRequestsTotal, err = meter.Int64Counter(
		"explainer_explain_requests_total",
		metric.WithDescription("Total explain requests by outcome"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("create explain_requests_total: %w", err)
	}

	if m.AnalysisDuration, err = meter.Float64Histogram(
		"explainer_analysis_duration_seconds",
		metric.WithDescription("Analysis pipeline duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1),
	); err != nil {
		return nil, fmt.Errorf("create analysis_duration: %w", err)
	}

	if m.LinesExplainedTotal, err = meter.Int64Counter(
		"explainer_lines_explained_total",
		metric.WithDescription("Explained lines by classifier rule"),
		metric.WithUnit("{line}"),
	); err != nil {
		return nil, fmt.Errorf("create lines_explained_total: %w", err)
	}

	if m.ComplexityTotal, err = meter.Int64Counter(
		"explainer_complexity_total",
		metric.WithDescription("Submissions by complexity label"),
		metric.WithUnit("{submission}"),
	); err != nil {
		return nil, fmt.Errorf("create complexity_total: %w", err)
	}

	if m.ImprovementsTotal, err = meter.Int64Counter(
		"explainer_improvements_total",
		metric.WithDescription("Improvement summaries computed"),
		metric.WithUnit("{summary}"),
	); err != nil {
		return nil, fmt.Errorf("create improvements_total: %w", err)
	}

	if m.ModelLoadsTotal, err = meter.Int64Counter(
		"explainer_model_loads_total",
		metric.WithDescription("Model load attempts by outcome"),
		metric.WithUnit("{load}"),
	); err != nil {
		return nil, fmt.Errorf("create model_loads_total: %w", err)
	}

	if m.ModelLoadDuration, err = meter.Float64Histogram(
		"explainer_model_load_duration_seconds",
		metric.WithDescription("Model load duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60, 120),
	); err != nil {
		return nil, fmt.Errorf("create model_load_duration: %w", err)
	}

	if m.ErrorsTotal, err = meter.Int64Counter(
		"explainer_errors_total",
		metric.WithDescription("Total errors by component"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, fmt.Errorf("create errors_total: %w", err)
	}

	return m, nil
}

// ObserveLine implements analysis.Observer.
func (m *Metrics) ObserveLine(ctx context.Context, rule string) {
	m.LinesExplainedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", rule)))
}

// ObserveImprovements implements analysis.Observer.
func (m *Metrics) ObserveImprovements(ctx context.Context) {
	m.ImprovementsTotal.Add(ctx, 1)
}

// RecordExplain records one finished explain request. analysisTime is the
// analyzer's own run time and is recorded only for successful requests.
func (m *Metrics) RecordExplain(ctx context.Context, outcome, complexity string, analysisTime time.Duration) {
	m.ExplainRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	if outcome != OutcomeSuccess {
		return
	}
	m.AnalysisDuration.Record(ctx, analysisTime.Seconds())
	m.ComplexityTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("complexity", complexity)))
}

// RecordModelLoad has the llm.LoadObserver signature.
func (m *Metrics) RecordModelLoad(ctx context.Context, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
		m.RecordError(ctx, "model")
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.ModelLoadsTotal.Add(ctx, 1, attrs)
	m.ModelLoadDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordError increments ErrorsTotal for component.
func (m *Metrics) RecordError(ctx context.Context, component string) {
	m.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("component", component)))
}
