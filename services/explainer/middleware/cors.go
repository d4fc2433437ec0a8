// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides the gin middleware chain of the explainer
// service.
//
// # Chain Order
//
//	Request
//	   │
//	   ▼
//	Recovery ──► RequestID ──► otelgin ──► RequestLogger ──► MetricsMiddleware ──► CORS
//	                                                                                 │
//	                                                                                 ▼
//	                                                                 RateLimit (explain only)
//	                                                                                 │
//	                                                                                 ▼
//	                                                                              Handler
//
// Recovery is outermost so a panic anywhere below it still produces a JSON
// error body. RequestID runs before logging so every log line carries it.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// DefaultAllowedOrigins are the local frontend dev servers.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:5174",
}

// CORSConfig configures CORS.
type CORSConfig struct {
	// AllowedOrigins is the origin allow-list. Empty means DefaultAllowedOrigins.
	AllowedOrigins []string

	// MaxAge is the preflight cache lifetime in seconds. 0 omits the header.
	MaxAge int
}

// CORS returns middleware applying the allow-list in cfg.
//
// # Description
//
// Wraps rs/cors for gin. Allowed origins are echoed back together with
// "Access-Control-Allow-Credentials: true". Requests from other origins
// are not rejected; they simply receive no CORS headers, so the browser
// blocks the response.
//
// Preflight requests (OPTIONS with Access-Control-Request-Method) are
// answered here with 204 and never reach a handler.
//
// # Inputs
//
//   - cfg: Allow-list and preflight cache settings.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware for router.Use.
//
// # Thread Safety
//
// Safe for concurrent use.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           cfg.MaxAge,
	})

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)

		if isPreflight(ctx.Request) {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}
