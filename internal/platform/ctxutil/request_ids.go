// Package ctxutil carries per-request correlation IDs through a context.
package ctxutil

import "context"

type requestIDsKey struct{}

// RequestIDs correlates one API request across logs and traces.
type RequestIDs struct {
	TraceID   string
	RequestID string
}

func (r RequestIDs) empty() bool { return r.TraceID == "" && r.RequestID == "" }

func WithRequestIDs(ctx context.Context, ids RequestIDs) context.Context {
	return context.WithValue(ctx, requestIDsKey{}, ids)
}

func RequestIDsFrom(ctx context.Context) (RequestIDs, bool) {
	if ctx == nil {
		return RequestIDs{}, false
	}
	ids, ok := ctx.Value(requestIDsKey{}).(RequestIDs)
	if !ok || ids.empty() {
		return RequestIDs{}, false
	}
	return ids, true
}

// LogFields returns key/value pairs for the logger, omitting empty IDs.
func LogFields(ctx context.Context) []interface{} {
	ids, ok := RequestIDsFrom(ctx)
	if !ok {
		return nil
	}
	out := make([]interface{}, 0, 4)
	if ids.TraceID != "" {
		out = append(out, "trace_id", ids.TraceID)
	}
	if ids.RequestID != "" {
		out = append(out, "request_id", ids.RequestID)
	}
	return out
}
