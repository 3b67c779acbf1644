package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	maxRequestIDLen = 128
)

// RequestIDs attaches trace and request IDs to the request context and echoes
// them as response headers. The trace ID comes from the active span when one
// exists, so it must run after the otel middleware.
func RequestIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		ids := ctxutil.RequestIDs{
			RequestID: sanitizeRequestID(c.GetHeader(headerRequestID)),
		}
		if ids.RequestID == "" {
			ids.RequestID = uuid.NewString()
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			ids.TraceID = sc.TraceID().String()
		} else {
			ids.TraceID = strings.ReplaceAll(uuid.NewString(), "-", "")
		}

		c.Request = c.Request.WithContext(ctxutil.WithRequestIDs(c.Request.Context(), ids))
		c.Writer.Header().Set(headerTraceID, ids.TraceID)
		c.Writer.Header().Set(headerRequestID, ids.RequestID)
		c.Next()
	}
}

// sanitizeRequestID drops client IDs that are too long or carry non-printable bytes.
func sanitizeRequestID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > maxRequestIDLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return ""
		}
	}
	return id
}
