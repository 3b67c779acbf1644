package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/ctxutil"
)

func serveWithIDs(t *testing.T, requestID string) (ctxutil.RequestIDs, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDs())

	var seen ctxutil.RequestIDs
	r.GET("/x", func(c *gin.Context) {
		seen, _ = ctxutil.RequestIDsFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if requestID != "" {
		req.Header.Set(headerRequestID, requestID)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return seen, rec
}

func TestRequestIDs_KeepsClientID(t *testing.T) {
	seen, rec := serveWithIDs(t, "req-123")
	if seen.RequestID != "req-123" || seen.TraceID == "" {
		t.Fatalf("ids not attached: %+v", seen)
	}
	if rec.Header().Get(headerRequestID) != "req-123" {
		t.Fatalf("request id not echoed")
	}
	if rec.Header().Get(headerTraceID) != seen.TraceID {
		t.Fatalf("trace id header mismatch")
	}
}

func TestRequestIDs_ReplacesBadClientID(t *testing.T) {
	for _, bad := range []string{strings.Repeat("a", maxRequestIDLen+1), "has space", "tab\tid"} {
		seen, _ := serveWithIDs(t, bad)
		if seen.RequestID == "" || seen.RequestID == bad {
			t.Fatalf("expected generated id for %q, got %q", bad, seen.RequestID)
		}
	}
}
