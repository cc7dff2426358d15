package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/roofpo/backend/internal/infrastructure/telemetry"
)

// Profiling labels the CPU profile of each request with its route, so
// Pyroscope can slice samples by endpoint. Unmatched routes are not labelled.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			c.Next()
			return
		}
		telemetry.WithOperationLabel(c.Request.Context(), c.Request.Method+" "+route, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
