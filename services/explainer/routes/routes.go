// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"log/slog"

	"github.com/AleutianAI/CodeExplainer/services/explainer/analysis"
	"github.com/AleutianAI/CodeExplainer/services/explainer/handlers"
	"github.com/AleutianAI/CodeExplainer/services/explainer/telemetry"
	"github.com/gin-gonic/gin"
)

// SetupRoutes registers the API on router. limiter guards the explain
// endpoint only; pass nil to disable it. /metrics is registered only when
// the prometheus exporter is active.
func SetupRoutes(router *gin.Engine, analyzer *analysis.Analyzer, models handlers.ModelProvider,
	metrics *telemetry.Metrics, limiter gin.HandlerFunc, logger *slog.Logger) {

	if h := telemetry.MetricsHandler(); h != nil {
		router.GET("/metrics", gin.WrapH(h))
	}

	api := router.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		explain := []gin.HandlerFunc{handlers.HandleExplain(analyzer, models, metrics, logger)}
		if limiter != nil {
			explain = append([]gin.HandlerFunc{limiter}, explain...)
		}
		api.POST("/explain", explain...)
	}
}
