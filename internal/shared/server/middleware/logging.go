package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/shared/telemetry"
)

const (
	// DocumentIDKey lets handlers tag the request log with a document.
	DocumentIDKey = "documentId"
	// StageTransitionKey lets handlers record a pipeline stage change.
	StageTransitionKey = "stageTransition"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":       RequestIDFromContext(c),
			"method":           c.Request.Method,
			"path":             c.Request.URL.Path,
			"route":            c.FullPath(),
			"status":           c.Writer.Status(),
			"stage_transition": c.GetString(StageTransitionKey),
			"duration_ms":      float64(latency.Microseconds()) / 1000.0,
			"user_id":          c.GetString(userIDKey),
			"organization_id":  c.GetString(orgIDKey),
			"document_id":      c.GetString(DocumentIDKey),
			"client_ip":        c.ClientIP(),
			"user_agent":       c.Request.UserAgent(),
		})
	}
}
