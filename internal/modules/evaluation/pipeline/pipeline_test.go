package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brunolnetto/sql-adventure-sub001/internal/data/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos"
	repotest "github.com/brunolnetto/sql-adventure-sub001/internal/data/repos/testutil"
	domainagg "github.com/brunolnetto/sql-adventure-sub001/internal/domain/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/events"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/analysis"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/patterns"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/validation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/observability"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
)

type fakeAnalyzer struct {
	fallback bool
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, in analysis.Input) evaluation.Result {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	tech, edu := 8.0, 9.0
	state := evaluation.CallSucceeded
	if f.fallback {
		tech, state = 1, evaluation.CallFellBack
	}
	return evaluation.Result{
		Analysis: evaluation.ComprehensiveAnalysis{
			OverallFeedback: "Solid use of constraints.",
			DifficultyLevel: in.Metadata.Difficulty,
			TimeEstimate:    in.Metadata.TimeEstimate,
			Technical: evaluation.TechnicalReasoning{
				Score: tech, Explanation: "ok", SyntaxQuality: evaluation.QualityGood,
				Strengths: []string{}, Weaknesses: []string{},
			},
			Educational: evaluation.EducationalReasoning{
				Score: edu, Explanation: "ok", RealWorldRelevance: "High", PedagogicalValue: "High",
			},
			DetectedPatterns: []evaluation.DetectedPattern{
				{Name: "table_creation", Confidence: 0.9, Quality: evaluation.QualityExcellent},
				{Name: "made_up_pattern", Confidence: 0.4, Quality: evaluation.QualityFair},
			},
		},
		Assessment: evaluation.AssessFromScores(tech, edu),
		Recommendations: []evaluation.Recommendation{
			{Priority: evaluation.PriorityMedium, ImplementationEffort: "Low", RecommendationText: "Add a CHECK constraint."},
		},
		Trace: evaluation.AnalysisTrace{
			Technical:   evaluation.CallTrace{Attempts: 1, State: state},
			Educational: evaluation.CallTrace{Attempts: 1, State: evaluation.CallSucceeded},
		},
	}
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, ev events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *recordingBus) StartForwarder(ctx context.Context, onEvent func(events.Event)) error {
	return nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) types() map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := map[string]int{}
	for _, ev := range b.events {
		out[ev.Type]++
	}
	return out
}

type store struct {
	repos.Set
	db *gorm.DB
}

func newRunner(t *testing.T, an Analyzer, bus events.Bus, concurrency int) (*Runner, store, *observability.Metrics) {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	repotest.SeedPattern(t, context.Background(), db, "table_creation", "ddl")

	cat, err := patterns.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	metrics := observability.NewMetrics(nil)
	r, err := NewRunner(Deps{
		Log:       log,
		Metrics:   metrics,
		Detector:  patterns.NewDetector(cat),
		Analyzer:  an,
		Validator: validation.New(log, metrics),
		Evaluations: aggregates.NewEvaluationAggregate(aggregates.EvaluationAggregateDeps{
			Base:            aggregates.BaseDeps{DB: db, Log: log},
			Evaluations:     set.Evaluations,
			Patterns:        set.Patterns,
			PatternUsages:   set.PatternUsages,
			Recommendations: set.Recommendations,
		}),
		Events: bus,
	}, Config{Concurrency: concurrency})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r, store{Set: set, db: db}, metrics
}

func writeQuestFiles(t *testing.T) []string {
	t.Helper()
	root := t.TempDir()
	var out []string
	for path, body := range map[string]string{
		"1-data-modeling/00-basic-concepts/01-basic-table-creation.sql": "-- PURPOSE: Create tables\n-- DIFFICULTY: 🟢 Beginner (5-10 min)\nCREATE TABLE users (id INT PRIMARY KEY, email TEXT NOT NULL);",
		"1-data-modeling/00-basic-concepts/02-constraints.sql":          "CREATE TABLE t (id INT PRIMARY KEY CHECK (id > 0));",
	} {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		out = append(out, full)
	}
	return out
}

func TestRunner_PersistsEveryReadableFile(t *testing.T) {
	bus := &recordingBus{}
	r, set, metrics := newRunner(t, &fakeAnalyzer{}, bus, 1)
	files := writeQuestFiles(t)
	files = append(files, filepath.Join(t.TempDir(), "missing.sql"))

	rep := r.Run(context.Background(), files)
	if rep.Total != 3 || rep.Succeeded != 2 || rep.Skipped != 1 || rep.Failed != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Interrupted {
		t.Fatalf("batch should not be interrupted")
	}

	n, err := set.Evaluations.Count(dbctx.Context{Ctx: context.Background()})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("want 2 evaluations, got %d", n)
	}

	for _, res := range rep.Files[:2] {
		if res.Status != StatusSucceeded || res.EvaluationID == nil {
			t.Fatalf("file result: %+v", res)
		}
		if res.Grade != "A" || res.Score != 9 {
			t.Fatalf("want A/9, got %s/%d", res.Grade, res.Score)
		}
		if len(res.UnknownPatterns) != 1 || res.UnknownPatterns[0] != "made_up_pattern" {
			t.Fatalf("unknown patterns: %v", res.UnknownPatterns)
		}
		row, err := set.Evaluations.GetByID(dbctx.Context{Ctx: context.Background()}, *res.EvaluationID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if row.QuestName != "1-data-modeling" || row.SubcategoryName != "00-basic-concepts" {
			t.Fatalf("path components not recorded: %+v", row)
		}
		usages := repotest.PatternUsages(t, context.Background(), set.db, row.ID)
		if len(usages) != 1 {
			t.Fatalf("want 1 linked pattern, got %d", len(usages))
		}
	}

	got := bus.types()
	if got[events.TypeCompleted] != 2 || got[events.TypeSkipped] != 1 {
		t.Fatalf("events: %v", got)
	}
	if metrics.EvaluationCount(StatusSucceeded) != 2 || metrics.EvaluationCount(StatusSkipped) != 1 {
		t.Fatalf("metrics not recorded")
	}
}

func TestRunner_CountsFallbacks(t *testing.T) {
	r, _, _ := newRunner(t, &fakeAnalyzer{fallback: true}, nil, 1)
	rep := r.Run(context.Background(), writeQuestFiles(t))
	if rep.Succeeded != 2 || rep.Fallback != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	for _, res := range rep.Files {
		// (1 + 9) / 2 = 5
		if res.Grade != "C" || !res.UsedFallback {
			t.Fatalf("file result: %+v", res)
		}
	}
}

func TestRunner_CanceledBatchPersistsNothing(t *testing.T) {
	an := &fakeAnalyzer{}
	r, set, _ := newRunner(t, an, nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := r.Run(ctx, writeQuestFiles(t))
	if rep.Canceled != 2 || !rep.Interrupted {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if an.calls.Load() != 0 {
		t.Fatalf("no file should start after cancellation")
	}
	n, err := set.Evaluations.Count(dbctx.Context{Ctx: context.Background()})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("want 0 evaluations, got %d", n)
	}
}

type countingAggregate struct {
	inflight atomic.Int32
	peak     atomic.Int32
	persists atomic.Int32
}

func (a *countingAggregate) Contract() domainagg.Contract {
	return domainagg.EvaluationAggregateContract
}

func (a *countingAggregate) Persist(ctx context.Context, in domainagg.PersistEvaluationInput) (domainagg.PersistEvaluationResult, error) {
	n := a.inflight.Add(1)
	defer a.inflight.Add(-1)
	for {
		p := a.peak.Load()
		if n <= p || a.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	a.persists.Add(1)
	return domainagg.PersistEvaluationResult{EvaluationID: uuid.New()}, nil
}

func TestRunner_RespectsConcurrencyLimit(t *testing.T) {
	log := repotest.Logger(t)
	cat, err := patterns.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	agg := &countingAggregate{}
	r, err := NewRunner(Deps{
		Log:         log,
		Detector:    patterns.NewDetector(cat),
		Analyzer:    &fakeAnalyzer{delay: 5 * time.Millisecond},
		Validator:   validation.New(log, nil),
		Evaluations: agg,
		ReadFile:    func(string) ([]byte, error) { return []byte("SELECT 1;"), nil },
	}, Config{Concurrency: 2})
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	files := make([]string, 8)
	for i := range files {
		files[i] = filepath.Join("quests", "1-data-modeling", "00-basic-concepts", uuid.NewString()+".sql")
	}
	rep := r.Run(context.Background(), files)
	if rep.Succeeded != 8 || agg.persists.Load() != 8 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if peak := agg.peak.Load(); peak > 2 {
		t.Fatalf("concurrency limit exceeded: peak %d", peak)
	}
}

func TestNewRunner_RequiresCollaborators(t *testing.T) {
	if _, err := NewRunner(Deps{}, Config{}); err == nil {
		t.Fatalf("expected error for missing deps")
	}
}
