package observability

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

// Metrics is the process metric registry. It is built once in app wiring and
// passed to the components that record into it; a nil *Metrics is a valid no-op.
type Metrics struct {
	apiRequests      *CounterVec
	apiLatency       *HistogramVec
	apiInflight      *Gauge
	llmRequests      *CounterVec
	llmLatency       *HistogramVec
	analysisAttempts *CounterVec
	analysisFallback *CounterVec
	evaluations      *CounterVec
	stageLatency     *HistogramVec
	corrections      *CounterVec
	catalogChanges   *CounterVec
	aggregateOps     *HistogramVec
	aggregateConfl   *CounterVec
	aggregateRetry   *CounterVec
}

func NewMetrics(log *logger.Logger) *Metrics {
	m := &Metrics{
		apiRequests: NewCounterVec("sqleval_api_requests_total", "HTTP requests served.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"sqleval_api_request_duration_seconds",
			"HTTP request latency in seconds.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		),
		apiInflight: NewGauge("sqleval_api_inflight_requests", "HTTP requests currently in flight."),
		llmRequests: NewCounterVec("sqleval_llm_requests_total", "AI stage calls.", []string{"model", "call", "status"}),
		llmLatency: NewHistogramVec(
			"sqleval_llm_request_duration_seconds",
			"AI stage call latency in seconds.",
			[]string{"model", "call", "status"},
			[]float64{0.5, 1, 2, 5, 10, 20, 45, 90, 180},
		),
		analysisAttempts: NewCounterVec("sqleval_analysis_attempts_total", "Analysis sub-call attempts by outcome.", []string{"call", "outcome"}),
		analysisFallback: NewCounterVec("sqleval_analysis_fallback_total", "Analysis sub-calls that fell back.", []string{"call"}),
		evaluations:      NewCounterVec("sqleval_evaluations_total", "Files processed by the evaluation pipeline.", []string{"status"}),
		stageLatency: NewHistogramVec(
			"sqleval_pipeline_stage_duration_seconds",
			"Per-file pipeline stage latency in seconds.",
			[]string{"stage", "status"},
			[]float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60, 180},
		),
		corrections:    NewCounterVec("sqleval_validation_corrections_total", "Fields coerced by result validation.", []string{"field"}),
		catalogChanges: NewCounterVec("sqleval_catalog_changes_total", "Catalog sync writes.", []string{"kind", "action"}),
		aggregateOps: NewHistogramVec(
			"sqleval_aggregate_operation_duration_seconds",
			"Transactional write latency in seconds.",
			[]string{"op", "status"},
			nil,
		),
		aggregateConfl: NewCounterVec("sqleval_aggregate_conflicts_total", "Transactional writes that hit a conflict.", []string{"op"}),
		aggregateRetry: NewCounterVec("sqleval_aggregate_retryable_total", "Transactional writes that failed with a retryable error.", []string{"op"}),
	}
	if log != nil {
		log.Debug("Observability metrics enabled")
	}
	return m
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency,
		m.analysisAttempts, m.analysisFallback,
		m.evaluations, m.stageLatency, m.corrections,
		m.catalogChanges,
		m.aggregateOps, m.aggregateConfl, m.aggregateRetry,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveLLMRequest(model, call, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(model, call, status)
	m.llmLatency.Observe(dur.Seconds(), model, call, status)
}

// IncAnalysisAttempt records one sub-call attempt; outcome is ok, transient or fatal.
func (m *Metrics) IncAnalysisAttempt(call, outcome string) {
	if m == nil {
		return
	}
	m.analysisAttempts.Inc(call, outcome)
}

func (m *Metrics) IncAnalysisFallback(call string) {
	if m == nil {
		return
	}
	m.analysisFallback.Inc(call)
}

func (m *Metrics) IncEvaluation(status string) {
	if m == nil {
		return
	}
	m.evaluations.Inc(strings.TrimSpace(status))
}

func (m *Metrics) EvaluationCount(status string) float64 {
	if m == nil {
		return 0
	}
	return m.evaluations.Value(status)
}

func (m *Metrics) ObserveStage(stage, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stageLatency.Observe(dur.Seconds(), stage, status)
}

func (m *Metrics) IncValidationCorrection(field string) {
	if m == nil {
		return
	}
	m.corrections.Inc(field)
}

func (m *Metrics) AddCatalogChanges(kind, action string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.catalogChanges.Add(float64(n), kind, action)
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Observe(dur.Seconds(), op, status)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConfl.Inc(op)
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetry.Inc(op)
}
