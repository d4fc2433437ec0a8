// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers holds the HTTP handlers of the explainer service.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/CodeExplainer/services/explainer/analysis"
	"github.com/AleutianAI/CodeExplainer/services/explainer/datatypes"
	"github.com/AleutianAI/CodeExplainer/services/explainer/middleware"
	"github.com/AleutianAI/CodeExplainer/services/explainer/telemetry"
	"github.com/AleutianAI/CodeExplainer/services/llm"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "explainer.handlers"

// ModelProvider supplies the loaded summarization model. *llm.Handle
// satisfies it.
type ModelProvider interface {
	Get(ctx context.Context) (llm.Model, error)
}

// HandleExplain serves POST /api/explain.
//
// # Description
//
// Binds and validates the body, makes sure the model is loaded when the
// submission has any non-whitespace content, runs the analyzer and writes
// the wire response. Responses are all-or-nothing:
//
//   - 422 {"detail"} for a body that does not bind or validate
//   - 500 {"detail"} when the model fails to load or the pipeline panics
//   - 200 ExplainResponse otherwise
//
// # Inputs
//
//   - analyzer: Analysis pipeline. Must not be nil.
//   - models: Model handle. Must not be nil.
//   - metrics: Instruments for outcome and latency. Must not be nil.
//   - logger: Nil means slog.Default().
func HandleExplain(analyzer *analysis.Analyzer, models ModelProvider, metrics *telemetry.Metrics, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		ctx, span := telemetry.StartSpan(c.Request.Context(), tracerName, "HandleExplain")
		defer span.End()

		log := telemetry.LoggerWithTrace(ctx, logger).With("request_id", middleware.GetRequestID(c))

		var req datatypes.ExplainRequest
		if err := bindExplainRequest(c, &req); err != nil {
			log.Warn("explain request rejected", "error", err)
			telemetry.RecordError(span, err, attribute.String("stage", "bind"))
			metrics.RecordExplain(ctx, telemetry.OutcomeRejected, "", 0)
			c.JSON(http.StatusUnprocessableEntity, datatypes.ErrorResponse{Detail: err.Error()})
			return
		}

		code := req.SourceCode()
		span.SetAttributes(
			attribute.Int("code.bytes", len(code)),
			attribute.Bool("include_improvements", req.WantsImprovements()),
		)

		res, took, err := explain(ctx, analyzer, models, code, req.WantsImprovements())
		if err != nil {
			log.Error("explain failed", "error", err)
			telemetry.RecordError(span, err, attribute.String("stage", "analyze"))
			metrics.RecordError(ctx, "handler")
			metrics.RecordExplain(ctx, telemetry.OutcomeError, "", 0)
			c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Detail: err.Error()})
			return
		}

		span.SetAttributes(
			attribute.String("complexity", string(res.Complexity.Level)),
			attribute.Int("complexity.loops", res.Complexity.LoopCount),
			attribute.Int("complexity.conditionals", res.Complexity.ConditionalCount),
			attribute.Int("lines.explained", len(res.Explanations)),
		)
		metrics.RecordExplain(ctx, telemetry.OutcomeSuccess, string(res.Complexity.Level), took)
		c.JSON(http.StatusOK, datatypes.NewExplainResponse(res))
	}
}

// bindExplainRequest decodes the body and applies the validate tags.
// gin's binding only honours `binding` tags, so Validate runs separately.
func bindExplainRequest(c *gin.Context, req *datatypes.ExplainRequest) error {
	if err := c.ShouldBindJSON(req); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return req.Validate()
}

// explain gates on the model and runs the analyzer. took covers the
// analyzer alone. A panic in either step comes back as an error.
func explain(ctx context.Context, analyzer *analysis.Analyzer, models ModelProvider, code string, includeImprovements bool) (res analysis.Result, took time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis failed: %v", r)
		}
	}()

	if !analysis.IsBlank(code) {
		if _, err := models.Get(ctx); err != nil {
			return analysis.Result{}, 0, fmt.Errorf("model unavailable: %w", err)
		}
	}

	start := time.Now()
	res = analyzer.Analyze(ctx, code, includeImprovements)
	return res, time.Since(start), nil
}
