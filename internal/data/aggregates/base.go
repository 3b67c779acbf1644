package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	domainagg "github.com/brunolnetto/sql-adventure-sub001/internal/domain/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

var tracer = otel.Tracer("sqleval/aggregates")

// retryBackoff is the pause before the second attempt; it doubles per attempt.
var retryBackoff = 25 * time.Millisecond

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// executeWrite runs fn in one transaction per attempt. Transient failures
// are rerun up to contract.Attempts() while ctx is live; fn must
// reset any state it accumulates. The final outcome is reported to hooks once.
func executeWrite(ctx context.Context, deps BaseDeps, contract domainagg.Contract, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = contract.Op("write")
	}

	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.String("aggregate", contract.Name),
		attribute.StringSlice("aggregate.tables", contract.Tables),
	)

	var (
		mapped   error
		attempts int
	)
	for attempts < contract.Attempts() {
		if attempts > 0 {
			deps.Hooks.IncRetry(op)
			deps.Log.Debug("Retrying aggregate write", "op", op, "attempt", attempts+1, "error", mapped)
			if !sleepCtx(ctx, retryBackoff<<(attempts-1)) {
				break
			}
		}
		attempts++
		mapped = MapError(op, deps.Runner.InTx(ctx, fn))
		if !domainagg.CodeOf(mapped).Transient() || ctx.Err() != nil {
			break
		}
	}
	span.SetAttributes(attribute.Int("aggregate.attempts", attempts))

	status := "success"
	if mapped != nil {
		code := domainagg.CodeOf(mapped)
		status = string(code)
		if code == domainagg.CodeConflict {
			deps.Hooks.IncConflict(op)
		}
		span.RecordError(mapped)
		span.SetStatus(codes.Error, status)
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
