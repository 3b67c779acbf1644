package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos"
	repotest "github.com/brunolnetto/sql-adventure-sub001/internal/data/repos/testutil"
	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
	domainagg "github.com/brunolnetto/sql-adventure-sub001/internal/domain/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
)

type failingUsageRepo struct {
	repos.PatternUsageRepo
	err error
}

func (f failingUsageRepo) Create(dbctx.Context, []*types.PatternUsage) ([]*types.PatternUsage, error) {
	return nil, f.err
}

func newEvaluationRow(path string) *types.Evaluation {
	return &types.Evaluation{
		FilePath:          path,
		FileName:          "01-create.sql",
		QuestName:         "1-data-modeling",
		SubcategoryName:   "01-basic-tables",
		Analysis:          datatypes.JSON([]byte(`{"analysis":{}}`)),
		Grade:             "B",
		Score:             7,
		OverallAssessment: "PASS",
		TechnicalScore:    7,
		EducationalScore:  7,
	}
}

func TestEvaluationAggregate_PersistLinksKnownPatterns(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	log := repotest.Logger(t)
	repotest.SeedPattern(t, ctx, db, "table_creation", "DDL")
	repotest.SeedPattern(t, ctx, db, "basic_select", "QUERY")

	set := repos.NewSet(db, log)
	agg := NewEvaluationAggregate(EvaluationAggregateDeps{
		Base:            BaseDeps{DB: db, Log: log},
		Evaluations:     set.Evaluations,
		Patterns:        set.Patterns,
		PatternUsages:   set.PatternUsages,
		Recommendations: set.Recommendations,
	})

	res, err := agg.Persist(ctx, domainagg.PersistEvaluationInput{
		Evaluation: newEvaluationRow("quests/1-data-modeling/01-basic-tables/01-create.sql"),
		PatternUsages: []domainagg.PatternUsageInput{
			{PatternName: "table_creation", Confidence: 0.9},
			{PatternName: "table_creation", Confidence: 0.95},
			{PatternName: "basic_select", Confidence: 0.8},
			{PatternName: "not_catalogued", Confidence: 0.6},
		},
		Recommendations: []evaluation.Recommendation{
			{Priority: evaluation.PriorityHigh, ImplementationEffort: "Low", RecommendationText: "Add an index"},
		},
	})
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if res.EvaluationID == uuid.Nil || res.LinkedPatterns != 2 || res.Recommendations != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.UnknownPatterns) != 1 || res.UnknownPatterns[0] != "not_catalogued" {
		t.Fatalf("unexpected unknown patterns: %+v", res.UnknownPatterns)
	}

	dbc := dbctx.Context{Ctx: ctx}
	usages := repotest.PatternUsages(t, ctx, db, res.EvaluationID)
	if len(usages) != 2 || usages[0].Confidence != 0.95 {
		t.Fatalf("usages: %+v", usages)
	}
	saved, err := set.Evaluations.GetByID(dbc, res.EvaluationID)
	if err != nil || saved == nil || saved.EvaluatedAt.IsZero() {
		t.Fatalf("saved evaluation: %+v err=%v", saved, err)
	}
}

func TestEvaluationAggregate_PersistIsAtomic(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	log := repotest.Logger(t)
	repotest.SeedPattern(t, ctx, db, "table_creation", "DDL")

	set := repos.NewSet(db, log)
	hooks := &spyHooks{}
	agg := NewEvaluationAggregate(EvaluationAggregateDeps{
		Base:            BaseDeps{DB: db, Log: log, Hooks: hooks},
		Evaluations:     set.Evaluations,
		Patterns:        set.Patterns,
		PatternUsages:   failingUsageRepo{PatternUsageRepo: set.PatternUsages, err: errors.New("disk full")},
		Recommendations: set.Recommendations,
	})

	row := newEvaluationRow("quests/1-data-modeling/01-basic-tables/01-create.sql")
	_, err := agg.Persist(ctx, domainagg.PersistEvaluationInput{
		Evaluation:    row,
		PatternUsages: []domainagg.PatternUsageInput{{PatternName: "table_creation", Confidence: 0.9}},
	})
	if err == nil {
		t.Fatalf("expected persist failure")
	}
	if row.ID != uuid.Nil {
		t.Fatalf("row id must be reset after rollback")
	}
	n, err := set.Evaluations.Count(dbctx.Context{Ctx: ctx})
	if err != nil || n != 0 {
		t.Fatalf("evaluation row leaked after failed usage write: n=%d err=%v", n, err)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeInternal) {
		t.Fatalf("hooks: %+v", hooks.Operations)
	}
}

func TestEvaluationAggregate_RejectsInvalidInput(t *testing.T) {
	agg := NewEvaluationAggregate(EvaluationAggregateDeps{})
	if _, err := agg.Persist(context.Background(), domainagg.PersistEvaluationInput{}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	row := newEvaluationRow("x.sql")
	row.ID = uuid.New()
	if _, err := agg.Persist(context.Background(), domainagg.PersistEvaluationInput{Evaluation: row}); !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}
