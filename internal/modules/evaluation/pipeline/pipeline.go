package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
	domainagg "github.com/brunolnetto/sql-adventure-sub001/internal/domain/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/events"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/analysis"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/metadata"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/patterns"
	"github.com/brunolnetto/sql-adventure-sub001/internal/observability"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/sqlexec"
)

var tracer = otel.Tracer("sqleval/pipeline")

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
	StatusCanceled  = "canceled"
)

type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) evaluation.Result
}

type ResultValidator interface {
	Validate(res evaluation.Result) evaluation.Result
}

type Deps struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	Detector    *patterns.Detector
	Executor    sqlexec.Executor
	Analyzer    Analyzer
	Validator   ResultValidator
	Evaluations domainagg.EvaluationAggregate
	Events      events.Bus

	// ReadFile defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)
}

type Config struct {
	Concurrency int
}

type FileResult struct {
	FilePath        string        `json:"file_path"`
	Status          string        `json:"status"`
	EvaluationID    *uuid.UUID    `json:"evaluation_id,omitempty"`
	Grade           string        `json:"grade,omitempty"`
	Score           int           `json:"score,omitempty"`
	UsedFallback    bool          `json:"used_fallback,omitempty"`
	Corrected       bool          `json:"corrected,omitempty"`
	UnknownPatterns []string      `json:"unknown_patterns,omitempty"`
	Error           string        `json:"error,omitempty"`
	Duration        time.Duration `json:"duration"`
}

type BatchReport struct {
	Total       int          `json:"total"`
	Succeeded   int          `json:"succeeded"`
	Failed      int          `json:"failed"`
	Skipped     int          `json:"skipped"`
	Canceled    int          `json:"canceled"`
	Corrected   int          `json:"corrected"`
	Fallback    int          `json:"fallback"`
	Interrupted bool         `json:"interrupted"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Files       []FileResult `json:"files"`
}

type Runner struct {
	deps Deps
	cfg  Config
}

func NewRunner(deps Deps, cfg Config) (*Runner, error) {
	if deps.Detector == nil || deps.Analyzer == nil || deps.Validator == nil || deps.Evaluations == nil {
		return nil, fmt.Errorf("pipeline: detector, analyzer, validator and evaluations are required")
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("service", "EvaluationPipeline")
	if deps.Executor == nil {
		deps.Executor = sqlexec.NewNoop()
	}
	if deps.Events == nil {
		deps.Events = events.NewNoop()
	}
	if deps.ReadFile == nil {
		deps.ReadFile = os.ReadFile
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Runner{deps: deps, cfg: cfg}, nil
}

// WithConcurrency returns a runner sharing r's collaborators with a different limit.
func (r *Runner) WithConcurrency(n int) *Runner {
	if n <= 0 {
		return r
	}
	cp := *r
	cp.cfg.Concurrency = n
	return &cp
}

// Run evaluates files with bounded concurrency. A failing file never stops the
// batch; cancellation stops new files and in-flight files persist nothing
// unless they already reached the persistence step.
func (r *Runner) Run(ctx context.Context, files []string) BatchReport {
	ctx, span := tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	rep := BatchReport{Total: len(files), StartedAt: time.Now().UTC()}
	results := make([]FileResult, len(files))

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i, path := range files {
		if ctx.Err() != nil {
			results[i] = FileResult{FilePath: path, Status: StatusCanceled, Error: ctx.Err().Error()}
			continue
		}
		g.Go(func() error {
			results[i] = r.EvaluateFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		switch res.Status {
		case StatusSucceeded:
			rep.Succeeded++
		case StatusFailed:
			rep.Failed++
		case StatusSkipped:
			rep.Skipped++
		case StatusCanceled:
			rep.Canceled++
		}
		if res.Corrected {
			rep.Corrected++
		}
		if res.UsedFallback {
			rep.Fallback++
		}
	}
	rep.Files = results
	rep.Interrupted = ctx.Err() != nil
	rep.FinishedAt = time.Now().UTC()

	span.SetAttributes(
		attribute.Int("succeeded", rep.Succeeded),
		attribute.Int("failed", rep.Failed),
		attribute.Int("skipped", rep.Skipped),
	)
	r.deps.Log.Info("Batch finished",
		"total", rep.Total,
		"succeeded", rep.Succeeded,
		"failed", rep.Failed,
		"skipped", rep.Skipped,
		"canceled", rep.Canceled,
		"fallback", rep.Fallback,
		"corrected", rep.Corrected,
		"duration", rep.FinishedAt.Sub(rep.StartedAt).String(),
	)
	return rep
}

// EvaluateFile runs detect, metadata, execute, analyze, validate and persist
// for one file, strictly in that order.
func (r *Runner) EvaluateFile(ctx context.Context, path string) FileResult {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "pipeline.EvaluateFile", trace.WithAttributes(attribute.String("file_path", path)))
	defer span.End()

	out := FileResult{FilePath: filepath.ToSlash(path)}
	finish := func(status string, err error) FileResult {
		out.Status = status
		if err != nil {
			out.Error = err.Error()
			span.SetStatus(codes.Error, out.Error)
		}
		out.Duration = time.Since(start)
		r.deps.Metrics.IncEvaluation(status)
		r.publish(ctx, out)
		return out
	}

	t := time.Now()
	raw, err := r.deps.ReadFile(path)
	if err != nil {
		r.deps.Metrics.ObserveStage("read", "error", time.Since(t))
		r.deps.Log.Warn("Skipping unreadable file", "file_path", path, "error", err)
		return finish(StatusSkipped, fmt.Errorf("read file: %w", err))
	}
	r.deps.Metrics.ObserveStage("read", "ok", time.Since(t))
	sql := string(raw)

	t = time.Now()
	matches := r.deps.Detector.Detect(sql)
	r.deps.Metrics.ObserveStage("detect", "ok", time.Since(t))

	md := metadata.Extract(path, sql)

	t = time.Now()
	exec, err := r.deps.Executor.Execute(ctx, sql)
	if err != nil {
		r.deps.Metrics.ObserveStage("execute", "error", time.Since(t))
		r.deps.Log.Warn("SQL execution unavailable", "file_path", path, "error", err)
		exec = sqlexec.Result{ErrorMessages: []string{err.Error()}, WarningMessages: []string{}}
	} else {
		r.deps.Metrics.ObserveStage("execute", "ok", time.Since(t))
	}

	t = time.Now()
	res := r.deps.Analyzer.Analyze(ctx, analysis.Input{
		FilePath:  out.FilePath,
		SQL:       sql,
		Metadata:  md,
		Patterns:  matches,
		Execution: exec,
	})
	analyzeStatus := "ok"
	if res.Trace.UsedFallback() {
		analyzeStatus = "fallback"
	}
	r.deps.Metrics.ObserveStage("analyze", analyzeStatus, time.Since(t))

	res = r.deps.Validator.Validate(res)
	out.Grade = string(res.Assessment.Grade)
	out.Score = res.Assessment.Score
	out.UsedFallback = res.Trace.UsedFallback()
	out.Corrected = res.Validation.Corrected

	if err := ctx.Err(); err != nil {
		return finish(StatusCanceled, err)
	}

	row, err := buildEvaluation(out.FilePath, md, exec, res)
	if err != nil {
		return finish(StatusFailed, err)
	}
	usages := make([]domainagg.PatternUsageInput, 0, len(res.Analysis.DetectedPatterns))
	for _, p := range res.Analysis.DetectedPatterns {
		usages = append(usages, domainagg.PatternUsageInput{PatternName: p.Name, Confidence: p.Confidence})
	}

	t = time.Now()
	persisted, err := r.deps.Evaluations.Persist(ctx, domainagg.PersistEvaluationInput{
		Evaluation:      row,
		PatternUsages:   usages,
		Recommendations: res.Recommendations,
	})
	if err != nil {
		r.deps.Metrics.ObserveStage("persist", "error", time.Since(t))
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return finish(StatusCanceled, err)
		}
		r.deps.Log.Error("Persist evaluation failed", "file_path", path, "error", err)
		return finish(StatusFailed, err)
	}
	r.deps.Metrics.ObserveStage("persist", "ok", time.Since(t))

	id := persisted.EvaluationID
	out.EvaluationID = &id
	out.UnknownPatterns = persisted.UnknownPatterns
	return finish(StatusSucceeded, nil)
}

func buildEvaluation(path string, md metadata.Metadata, exec sqlexec.Result, res evaluation.Result) (*types.Evaluation, error) {
	analysisJSON, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}
	mdJSON, err := json.Marshal(md)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	execJSON, err := json.Marshal(exec)
	if err != nil {
		return nil, fmt.Errorf("encode execution: %w", err)
	}
	return &types.Evaluation{
		FilePath:            path,
		FileName:            md.FileName,
		QuestName:           md.Quest,
		SubcategoryName:     md.Subcategory,
		Metadata:            datatypes.JSON(mdJSON),
		Execution:           datatypes.JSON(execJSON),
		ExecutionSuccess:    exec.Executed && exec.Success,
		Analysis:            datatypes.JSON(analysisJSON),
		Grade:               string(res.Assessment.Grade),
		Score:               res.Assessment.Score,
		OverallAssessment:   string(res.Assessment.OverallAssessment),
		TechnicalScore:      res.Analysis.Technical.Score,
		EducationalScore:    res.Analysis.Educational.Score,
		ValidationCorrected: res.Validation.Corrected,
		UsedFallback:        res.Trace.UsedFallback(),
	}, nil
}

func (r *Runner) publish(ctx context.Context, res FileResult) {
	ev := events.Event{
		FilePath:     res.FilePath,
		Quest:        questOf(res.FilePath),
		EvaluationID: res.EvaluationID,
		Grade:        res.Grade,
		Score:        res.Score,
		UsedFallback: res.UsedFallback,
		Corrected:    res.Corrected,
		Error:        res.Error,
		OccurredAt:   time.Now().UTC(),
	}
	switch res.Status {
	case StatusSucceeded:
		ev.Type = events.TypeCompleted
	case StatusSkipped:
		ev.Type = events.TypeSkipped
	default:
		ev.Type = events.TypeFailed
	}
	// Publishing must outlive a canceled batch so subscribers still see the outcome.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := r.deps.Events.Publish(pubCtx, ev); err != nil {
		r.deps.Log.Warn("Publish evaluation event failed", "file_path", res.FilePath, "error", err)
	}
}

func questOf(path string) string {
	q, _, _ := metadata.SplitPath(path)
	if q == metadata.Unknown {
		return ""
	}
	return q
}
