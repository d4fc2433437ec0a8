// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/CodeExplainer/services/explainer/telemetry"
	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request after the handler returns.
//
// # Description
//
// Logs method, path, status, latency and request ID. 5xx responses log at
// error level, 4xx at warn, everything else at info. When otelgin runs
// earlier in the chain the line also carries trace_id and span_id.
//
// # Inputs
//
//   - logger: Destination. Nil means slog.Default().
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		base := logger
		if base == nil {
			base = slog.Default()
		}
		log := telemetry.LoggerWithTrace(c.Request.Context(), base)

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", GetRequestID(c),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", attrs...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", attrs...)
		default:
			log.Info("request completed", attrs...)
		}
	}
}
