// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/AleutianAI/CodeExplainer/services/explainer/datatypes"
	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into a 500 with {"detail": "<panic value>"}.
//
// gin's own stack dump is discarded; the stack is logged through logger
// instead so it lands in the structured log.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log := logger
		if log == nil {
			log = slog.Default()
		}
		detail := fmt.Sprint(recovered)
		log.Error("panic recovered",
			"path", c.Request.URL.Path,
			"request_id", GetRequestID(c),
			"panic", detail,
			"stack", string(debug.Stack()),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, datatypes.ErrorResponse{Detail: detail})
	})
}
