package catalogsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/brunolnetto/sql-adventure-sub001/internal/data/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos"
	repotest "github.com/brunolnetto/sql-adventure-sub001/internal/data/repos/testutil"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/discovery"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/patterns"
	"github.com/brunolnetto/sql-adventure-sub001/internal/observability"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
)

func newService(t *testing.T) (*Service, repos.Set) {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	set := repos.NewSet(db, log)
	agg := aggregates.NewCatalogAggregate(aggregates.CatalogAggregateDeps{
		Base:          aggregates.BaseDeps{DB: db, Log: log},
		Quests:        set.Quests,
		Subcategories: set.Subcategories,
		Patterns:      set.Patterns,
	})
	return NewService(log, agg, observability.NewMetrics(nil)), set
}

func discoverDataModeling(t *testing.T) []discovery.Quest {
	t.Helper()
	root := t.TempDir()
	for path, body := range map[string]string{
		"1-data-modeling/00-basic-concepts/01-basic-table-creation.sql": "-- DIFFICULTY: 🟢 Beginner (5-10 min)\nCREATE TABLE t (id INT PRIMARY KEY);",
		"1-data-modeling/00-basic-concepts/02-constraints.sql":          "-- DIFFICULTY: Beginner\nSELECT 1;",
		"1-data-modeling/01-normalization/01-first-normal-form.sql":     "-- DIFFICULTY: Intermediate\nSELECT 1;",
	} {
		full := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	quests, err := discovery.Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	return quests
}

func TestSync_SecondRunReportsNoUpdates(t *testing.T) {
	svc, set := newService(t)
	ctx := context.Background()
	cat, err := patterns.DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	quests := discoverDataModeling(t)

	first, err := svc.Sync(ctx, quests, cat.Definitions())
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.QuestsCreated != 1 || first.SubcategoriesCreated != 2 || first.PatternsCreated != cat.Len() {
		t.Fatalf("first report: %+v", first)
	}

	second, err := svc.Sync(ctx, discoverDataModeling(t), cat.Definitions())
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.Updates() != 0 || second.QuestsCreated != 0 || second.SubcategoriesCreated != 0 {
		t.Fatalf("second report should have no changes: %+v", second)
	}
	if second.QuestsUnchanged != 1 || second.SubcategoriesUnchanged != 2 {
		t.Fatalf("second report: %+v", second)
	}
	if second.PatternsCreated != 0 || second.PatternsExisting != cat.Len() {
		t.Fatalf("pattern re-upsert should be a no-op: %+v", second)
	}

	n, err := set.Patterns.Count(dbctx.Context{Ctx: ctx})
	if err != nil || n != int64(cat.Len()) {
		t.Fatalf("pattern rows: %d err=%v", n, err)
	}
	q, err := set.Quests.GetByName(dbctx.Context{Ctx: ctx}, "1-data-modeling")
	if err != nil || q == nil {
		t.Fatalf("quest lookup: %v", err)
	}
	if q.OrderIndex != 1 || q.DifficultyLevel != "Beginner" {
		t.Fatalf("stored quest: %+v", q)
	}
	norm, err := set.Subcategories.GetByQuestAndName(dbctx.Context{Ctx: ctx}, q.ID, "01-normalization")
	if err != nil || norm == nil || norm.DifficultyLevel != "Intermediate" {
		t.Fatalf("normalization override: %+v err=%v", norm, err)
	}
}

func TestSync_ReportsFailedQuestAndContinues(t *testing.T) {
	svc, _ := newService(t)
	quests := []discovery.Quest{
		{Name: ""},
		{Name: "2-performance", DisplayName: "Performance", Difficulty: "Advanced", OrderIndex: 2},
	}
	rep, err := svc.Sync(context.Background(), quests, nil)
	if err == nil {
		t.Fatalf("expected joined error for the unnamed quest")
	}
	if rep.QuestsCreated != 1 || len(rep.FailedQuests) != 1 {
		t.Fatalf("report: %+v", rep)
	}
}
