package aggregates

import (
	"time"

	"github.com/brunolnetto/sql-adventure-sub001/internal/observability"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

// slowWrite is the duration above which a finished write is logged.
const slowWrite = time.Second

// Hooks receives the outcome of every aggregate write.
type Hooks interface {
	ObserveOperation(op, status string, dur time.Duration)
	IncConflict(op string)
	IncRetry(op string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

type observabilityHooks struct {
	metrics *observability.Metrics
	log     *logger.Logger
}

// NewObservabilityHooks feeds write outcomes into metrics and logs slow writes.
// Both arguments may be nil.
func NewObservabilityHooks(metrics *observability.Metrics, log *logger.Logger) Hooks {
	if metrics == nil && log == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics, log: log}
}

func (h *observabilityHooks) ObserveOperation(op, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(op, status, dur)
	if h.log != nil && dur > slowWrite {
		h.log.Warn("Slow aggregate write", "op", op, "status", status, "duration_ms", dur.Milliseconds())
	}
}

func (h *observabilityHooks) IncConflict(op string) { h.metrics.IncAggregateConflict(op) }

func (h *observabilityHooks) IncRetry(op string) { h.metrics.IncAggregateRetry(op) }
