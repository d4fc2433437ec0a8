// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package telemetry provides OpenTelemetry-based observability for the code
// explainer.
//
// Init wires the global TracerProvider and MeterProvider from Config.
// Traces go to an OTLP collector over gRPC, to stdout, or nowhere. Metrics
// are exposed for Prometheus scraping through MetricsHandler, or printed to
// stdout.
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, cfg)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
//
//	metrics, err := telemetry.NewMetrics(otel.Meter("explainer"))
//
// Metrics also satisfies analysis.Observer, so the analysis pipeline can
// report per-rule line counts without importing this package.
//
// # Environment Variables
//
//   - OTEL_TRACES_EXPORTER: otlp, stdout, or none (default: none)
//   - OTEL_METRICS_EXPORTER: prometheus, stdout, or none (default: prometheus)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: collector address (default: localhost:4317)
//
// These are read by the command's config loader, not by this package.
package telemetry
