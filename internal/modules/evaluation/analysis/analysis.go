package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/metadata"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/patterns"
	"github.com/brunolnetto/sql-adventure-sub001/internal/observability"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/httpx"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/openai"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/sqlexec"
)

var tracer = otel.Tracer("sqleval/analysis")

const (
	callTechnical   = "technical"
	callEducational = "educational"

	// FallbackExplanation is the explanation of a substituted sub-call.
	FallbackExplanation = "analysis unavailable"
	// FallbackRecommendation is prepended whenever any sub-call fell back.
	FallbackRecommendation = "Manual review required: automated analysis was unavailable."
)

type Config struct {
	// Model labels metrics; the client decides the actual model.
	Model          string
	MaxAttempts    int
	AttemptTimeout time.Duration
	RetryBackoff   time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.AttemptTimeout <= 0 {
		c.AttemptTimeout = 90 * time.Second
	}
	if c.RetryBackoff < 0 {
		c.RetryBackoff = 0
	}
	if strings.TrimSpace(c.Model) == "" {
		c.Model = "unknown"
	}
	return c
}

// Input is everything the analysis stage knows about one file.
type Input struct {
	FilePath  string
	SQL       string
	Metadata  metadata.Metadata
	Patterns  []patterns.Match
	Execution sqlexec.Result
}

type Orchestrator struct {
	log      *logger.Logger
	ai       openai.Client
	catalog  *patterns.Catalog
	metrics  *observability.Metrics
	validate *validator.Validate
	cfg      Config
}

// NewOrchestrator builds the analysis stage. A nil ai client makes every
// sub-call fall back immediately.
func NewOrchestrator(log *logger.Logger, ai openai.Client, catalog *patterns.Catalog, metrics *observability.Metrics, cfg Config) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		log:      log.With("service", "AnalysisOrchestrator"),
		ai:       ai,
		catalog:  catalog,
		metrics:  metrics,
		validate: validator.New(),
		cfg:      cfg.withDefaults(),
	}
}

// Analyze runs the technical and educational sub-calls and combines them.
// It never fails: a sub-call that cannot produce a conformant answer is
// replaced by its deterministic fallback.
func (o *Orchestrator) Analyze(ctx context.Context, in Input) evaluation.Result {
	ctx, span := tracer.Start(ctx, "analysis.Analyze",
		trace.WithAttributes(attribute.String("file_path", in.FilePath)),
	)
	defer span.End()

	var (
		tech      evaluation.TechnicalReasoning
		edu       educationalResponse
		techTrace evaluation.CallTrace
		eduTrace  evaluation.CallTrace
	)

	var g errgroup.Group
	g.Go(func() error {
		sys, usr := promptTechnical(in)
		techTrace = o.runCall(ctx, in.FilePath, callTechnical, sys, usr, technicalSchemaName, schemaTechnicalV1(), &tech)
		return nil
	})
	g.Go(func() error {
		sys, usr := promptEducational(in)
		eduTrace = o.runCall(ctx, in.FilePath, callEducational, sys, usr, educationalSchemaName, schemaEducationalV1(), &edu)
		return nil
	})
	_ = g.Wait()

	if techTrace.State != evaluation.CallSucceeded {
		tech = fallbackTechnical()
	}
	if eduTrace.State != evaluation.CallSucceeded {
		edu = fallbackEducational()
	}

	res := o.assemble(in, tech, edu, evaluation.AnalysisTrace{Technical: techTrace, Educational: eduTrace})
	span.SetAttributes(
		attribute.Int("score", res.Assessment.Score),
		attribute.String("grade", string(res.Assessment.Grade)),
		attribute.Bool("used_fallback", res.Trace.UsedFallback()),
	)
	return res
}

// runCall drives one sub-call until it succeeds or falls back, decoding the
// accepted answer into out.
func (o *Orchestrator) runCall(ctx context.Context, filePath, call, system, user, schemaName string, schema map[string]any, out any) evaluation.CallTrace {
	ctx, span := tracer.Start(ctx, "analysis."+call)
	defer span.End()

	m := newCallMachine(o.cfg.MaxAttempts)
	if o.ai == nil {
		m.abort(errors.New("ai client not configured"))
	}

	for m.attempting() {
		if err := ctx.Err(); err != nil {
			m.abort(err)
			break
		}
		n := m.begin()

		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.AttemptTimeout)
		start := time.Now()
		obj, err := o.ai.GenerateJSON(attemptCtx, system, user, schemaName, schema)
		cancel()
		if err == nil {
			err = o.decode(obj, out)
		}
		dur := time.Since(start)

		if err == nil {
			o.metrics.ObserveLLMRequest(o.cfg.Model, call, "ok", dur)
			o.metrics.IncAnalysisAttempt(call, "succeeded")
			m.succeed()
			break
		}

		transient := isTransient(err) && ctx.Err() == nil
		outcome := "permanent"
		if transient {
			outcome = "transient"
		}
		o.metrics.ObserveLLMRequest(o.cfg.Model, call, "error", dur)
		o.metrics.IncAnalysisAttempt(call, outcome)
		m.fail(err, transient)

		if m.attempting() {
			o.log.Debug("Analysis attempt failed; retrying",
				"file_path", filePath,
				"call", call,
				"attempt", n,
				"error", err.Error(),
			)
			if err := o.backoff(ctx, n); err != nil {
				m.abort(err)
			}
		}
	}

	tr := m.trace()
	span.SetAttributes(
		attribute.Int("attempts", tr.Attempts),
		attribute.String("state", string(tr.State)),
	)
	if tr.State == evaluation.CallFellBack {
		span.SetStatus(codes.Error, tr.LastError)
		o.metrics.IncAnalysisFallback(call)
		o.log.Warn("Analysis sub-call fell back",
			"file_path", filePath,
			"call", call,
			"attempts", tr.Attempts,
			"error", tr.LastError,
		)
	}
	return tr
}

func (o *Orchestrator) backoff(ctx context.Context, attempt int) error {
	if o.cfg.RetryBackoff <= 0 {
		return nil
	}
	d := o.cfg.RetryBackoff << (attempt - 1)
	return httpx.SleepCtx(ctx, httpx.JitterSleep(d))
}

// nonConformantError marks a model answer that parsed but broke the schema.
type nonConformantError struct {
	reason string
}

func (e *nonConformantError) Error() string { return "schema non-conformant output: " + e.reason }

// decode parses obj into a fresh value of out's element type and stores it
// in out only when it conforms. A rejected attempt leaves out untouched.
func (o *Orchestrator) decode(obj map[string]any, out any) error {
	if obj == nil {
		return &nonConformantError{reason: "empty object"}
	}
	dst := reflect.ValueOf(out)
	if dst.Kind() != reflect.Pointer || dst.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", out)
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return &nonConformantError{reason: err.Error()}
	}
	fresh := reflect.New(dst.Elem().Type())
	if err := json.Unmarshal(raw, fresh.Interface()); err != nil {
		return &nonConformantError{reason: err.Error()}
	}
	if err := o.validate.Struct(fresh.Interface()); err != nil {
		return &nonConformantError{reason: err.Error()}
	}
	dst.Elem().Set(fresh.Elem())
	return nil
}

// isTransient reports failures worth another attempt: timeouts, transport
// errors, retryable HTTP statuses and malformed or non-conformant output.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if httpx.IsRetryableError(err) {
		return true
	}
	var malformed *openai.MalformedOutputError
	if errors.As(err, &malformed) {
		return true
	}
	var nc *nonConformantError
	if errors.As(err, &nc) {
		return true
	}
	var sc httpx.HTTPStatusCoder
	if errors.As(err, &sc) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func fallbackTechnical() evaluation.TechnicalReasoning {
	return evaluation.TechnicalReasoning{
		Score:                     evaluation.MinScore,
		Explanation:               FallbackExplanation,
		Strengths:                 []string{},
		Weaknesses:                []string{},
		SyntaxQuality:             evaluation.QualityPoor,
		PerformanceConsiderations: FallbackExplanation,
	}
}

func fallbackEducational() educationalResponse {
	return educationalResponse{
		EducationalReasoning: evaluation.EducationalReasoning{
			Score:              evaluation.MinScore,
			Explanation:        FallbackExplanation,
			RealWorldRelevance: evaluation.LevelLow,
			PedagogicalValue:   evaluation.LevelLow,
		},
	}
}

func (o *Orchestrator) assemble(in Input, tech evaluation.TechnicalReasoning, edu educationalResponse, tr evaluation.AnalysisTrace) evaluation.Result {
	if tech.Strengths == nil {
		tech.Strengths = []string{}
	}
	if tech.Weaknesses == nil {
		tech.Weaknesses = []string{}
	}

	feedback := strings.TrimSpace(edu.OverallFeedback)
	if feedback == "" {
		if tr.Technical.State == evaluation.CallSucceeded {
			feedback = tech.Explanation
		} else {
			feedback = FallbackExplanation
		}
	}
	difficulty := edu.DifficultyLevel
	if difficulty == "" {
		difficulty = in.Metadata.Difficulty
	}
	timeEstimate := strings.TrimSpace(edu.TimeEstimate)
	if timeEstimate == "" {
		timeEstimate = in.Metadata.TimeEstimate
	}
	if timeEstimate == "" {
		timeEstimate = metadata.Unknown
	}

	recs := make([]evaluation.Recommendation, 0, len(edu.Recommendations)+1)
	if tr.UsedFallback() {
		recs = append(recs, evaluation.Recommendation{
			Priority:             evaluation.PriorityHigh,
			ImplementationEffort: evaluation.LevelLow,
			RecommendationText:   FallbackRecommendation,
		})
	}
	recs = append(recs, edu.Recommendations...)

	return evaluation.Result{
		Analysis: evaluation.ComprehensiveAnalysis{
			OverallFeedback:  feedback,
			DifficultyLevel:  difficulty,
			TimeEstimate:     timeEstimate,
			Technical:        tech,
			Educational:      edu.EducationalReasoning,
			DetectedPatterns: o.detectedPatterns(in.Patterns),
		},
		Assessment:      evaluation.AssessFromScores(tech.Score, edu.Score),
		Recommendations: recs,
		Trace:           tr,
	}
}

func (o *Orchestrator) detectedPatterns(ms []patterns.Match) []evaluation.DetectedPattern {
	out := make([]evaluation.DetectedPattern, 0, len(ms))
	for _, m := range ms {
		c := evaluation.ClampConfidence(m.Confidence)
		desc := ""
		if o.catalog != nil {
			if def, ok := o.catalog.Lookup(m.Name); ok {
				desc = def.Description
			}
		}
		out = append(out, evaluation.DetectedPattern{
			Name:        m.Name,
			Confidence:  c,
			Quality:     evaluation.QualityForConfidence(c),
			Description: desc,
		})
	}
	return out
}
