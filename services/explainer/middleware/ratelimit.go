// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"net/http"

	"github.com/AleutianAI/CodeExplainer/services/explainer/datatypes"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	// RPS is the sustained request rate. Zero or negative disables limiting.
	RPS float64

	// Burst is the bucket size. Values below 1 become 1.
	Burst int
}

// RateLimit returns a token-bucket limiter shared by every client.
//
// # Description
//
// Requests beyond the bucket are rejected immediately with 429 and
// {"detail": "rate limit exceeded"}. Nothing is queued.
//
// # Outputs
//
//   - gin.HandlerFunc: Pass-through middleware when cfg.RPS <= 0.
//
// # Limitations
//
//   - One bucket for the whole process, not per client address.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RPS), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				datatypes.ErrorResponse{Detail: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
