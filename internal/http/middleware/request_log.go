package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/ctxutil"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

// RequestLogger logs one line per request at a level chosen by status class.
// Query strings are never logged.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := append([]interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}, ctxutil.LogFields(c.Request.Context())...)
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			log.Error("API request failed", fields...)
		case status >= 400:
			log.Warn("API request rejected", fields...)
		default:
			log.Debug("API request", fields...)
		}
	}
}
