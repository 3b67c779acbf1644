package evaluation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos/testutil"
	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
	domaineval "github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
)

func TestEvaluationRepo_AppendOnly(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	evals := NewEvaluationRepo(db, log)
	now := time.Now().UTC()
	older := testutil.SeedEvaluation(t, ctx, tx, "1-data-modeling", "quests/1-data-modeling/01-basic/a.sql", 6, now.Add(-time.Hour))
	newer := testutil.SeedEvaluation(t, ctx, tx, "1-data-modeling", "quests/1-data-modeling/01-basic/a.sql", 8, now)

	rows, err := evals.ListByFilePath(dbc, "quests/1-data-modeling/01-basic/a.sql")
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByFilePath: len=%d err=%v", len(rows), err)
	}
	if rows[0].ID != newer.ID || rows[1].ID != older.ID {
		t.Fatalf("expected newest first")
	}
	if got, err := evals.GetByID(dbc, older.ID); err != nil || got == nil || got.Score != 6 {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}
	if got, err := evals.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID missing: got=%+v err=%v", got, err)
	}

	err = tx.WithContext(ctx).Model(older).Update("score", 10).Error
	if !errors.Is(err, domaineval.ErrImmutable) {
		t.Fatalf("expected ErrImmutable on update, got %v", err)
	}
	err = tx.WithContext(ctx).Delete(newer).Error
	if !errors.Is(err, domaineval.ErrImmutable) {
		t.Fatalf("expected ErrImmutable on delete, got %v", err)
	}
	if n, err := evals.Count(dbc); err != nil || n != 2 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}
}

func TestPatternUsageAndRecommendationRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	e := testutil.SeedEvaluation(t, ctx, tx, "1-data-modeling", "a.sql", 7, time.Now().UTC())
	p1 := testutil.SeedPattern(t, ctx, tx, "table_creation", "DDL")
	p2 := testutil.SeedPattern(t, ctx, tx, "basic_select", "QUERY")

	usages := NewPatternUsageRepo(db, log)
	if _, err := usages.Create(dbc, []*types.PatternUsage{
		{EvaluationID: e.ID, PatternID: p1.ID, Confidence: 0.9},
		{EvaluationID: e.ID, PatternID: p2.ID, Confidence: 0.7},
	}); err != nil {
		t.Fatalf("PatternUsage Create: %v", err)
	}
	got := testutil.PatternUsages(t, ctx, tx, e.ID)
	if len(got) != 2 || got[0].PatternID != p1.ID {
		t.Fatalf("pattern usages: got=%+v", got)
	}

	recs := NewRecommendationRepo(db, log)
	if _, err := recs.Create(dbc, []*types.EvaluationRecommendation{
		{EvaluationID: e.ID, Position: 1, Priority: "Low", ImplementationEffort: "Low", RecommendationText: "b"},
		{EvaluationID: e.ID, Position: 0, Priority: "High", ImplementationEffort: "Medium", RecommendationText: "a"},
	}); err != nil {
		t.Fatalf("Recommendation Create: %v", err)
	}
	rr := testutil.Recommendations(t, ctx, tx, e.ID)
	if len(rr) != 2 || rr[0].RecommendationText != "a" {
		t.Fatalf("recommendations: got=%+v", rr)
	}
}
