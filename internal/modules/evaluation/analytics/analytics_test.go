package analytics

import (
	"context"
	"testing"
	"time"

	repotest "github.com/brunolnetto/sql-adventure-sub001/internal/data/repos/testutil"
	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
)

func TestComprehensiveSummary_EmptyStore(t *testing.T) {
	db := repotest.DB(t)
	m := NewManager(repotest.Logger(t), db)

	s, err := m.ComprehensiveSummary(context.Background())
	if err != nil {
		t.Fatalf("ComprehensiveSummary: %v", err)
	}
	if s.Overview != (Overview{}) || s.Activity != (Activity{}) {
		t.Fatalf("expected zero counts, got %+v %+v", s.Overview, s.Activity)
	}
	if s.Quality.AverageScore != 0 || s.Quality.SuccessRate != 0 {
		t.Fatalf("expected zero quality, got %+v", s.Quality)
	}
	if len(s.Quality.GradeCounts) != 5 || s.Quality.GradeCounts["A"] != 0 {
		t.Fatalf("grade buckets: %+v", s.Quality.GradeCounts)
	}
	if len(s.Quality.PriorityCounts) != 3 {
		t.Fatalf("priority buckets: %+v", s.Quality.PriorityCounts)
	}
	if s.Quests == nil || len(s.Quests) != 0 || s.TopFiles == nil || s.Patterns == nil {
		t.Fatalf("expected empty, non-nil lists: %+v", s)
	}
	if s.Insights.SystemHealth != HealthNoData || s.Insights.MostActiveQuest != "" {
		t.Fatalf("insights: %+v", s.Insights)
	}
}

func TestBuildViews_IsRerunnable(t *testing.T) {
	db := repotest.DB(t)
	m := NewManager(repotest.Logger(t), db)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := m.BuildViews(ctx); err != nil {
			t.Fatalf("BuildViews run %d: %v", i, err)
		}
	}
	for _, name := range ViewNames() {
		var n int64
		if err := db.Table(name).Count(&n).Error; err != nil {
			t.Fatalf("view %s not queryable: %v", name, err)
		}
	}
}

func TestComprehensiveSummary_WithHistory(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	repotest.SeedQuest(t, ctx, db, "1-data-modeling", 1)
	repotest.SeedQuest(t, ctx, db, "2-performance-tuning", 2)
	p := repotest.SeedPattern(t, ctx, db, "table_creation", "DDL")
	repotest.SeedPattern(t, ctx, db, "unused_pattern", "DDL")

	first := repotest.SeedEvaluation(t, ctx, db, "1-data-modeling", "quests/1-data-modeling/a/01.sql", 4, now.Add(-40*24*time.Hour))
	latest := repotest.SeedEvaluation(t, ctx, db, "1-data-modeling", "quests/1-data-modeling/a/01.sql", 8, now.Add(-2*time.Hour))
	repotest.SeedEvaluation(t, ctx, db, "1-data-modeling", "quests/1-data-modeling/a/02.sql", 9, now.Add(-3*24*time.Hour))
	repotest.SeedEvaluation(t, ctx, db, "2-performance-tuning", "quests/2-performance-tuning/a/01.sql", 5, now.Add(-10*24*time.Hour))

	if err := db.Create(&types.PatternUsage{EvaluationID: latest.ID, PatternID: p.ID, Confidence: 0.9}).Error; err != nil {
		t.Fatalf("seed usage: %v", err)
	}
	for _, r := range []*types.EvaluationRecommendation{
		{EvaluationID: first.ID, Position: 0, Priority: "High", ImplementationEffort: "Low", RecommendationText: "stale"},
		{EvaluationID: latest.ID, Position: 0, Priority: "Medium", ImplementationEffort: "Low", RecommendationText: "Add an index"},
	} {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed recommendation: %v", err)
		}
	}

	m := NewManager(repotest.Logger(t), db)
	s, err := m.ComprehensiveSummary(ctx)
	if err != nil {
		t.Fatalf("ComprehensiveSummary: %v", err)
	}

	if s.Overview.Quests != 2 || s.Overview.Patterns != 2 || s.Overview.Evaluations != 4 || s.Overview.FilesEvaluated != 3 {
		t.Fatalf("overview: %+v", s.Overview)
	}
	if s.Quality.AverageScore != 6.5 || s.Quality.SuccessRate != 0.5 {
		t.Fatalf("quality: %+v", s.Quality)
	}
	if s.Quality.GradeCounts["A"] != 1 || s.Quality.GradeCounts["B"] != 1 || s.Quality.GradeCounts["C"] != 1 || s.Quality.GradeCounts["D"] != 1 {
		t.Fatalf("grade counts: %+v", s.Quality.GradeCounts)
	}
	// Only the latest evaluation of each file contributes open recommendations.
	if s.Quality.PriorityCounts["Medium"] != 1 || s.Quality.PriorityCounts["High"] != 0 {
		t.Fatalf("priority counts: %+v", s.Quality.PriorityCounts)
	}
	if s.Activity.LastDay != 1 || s.Activity.LastWeek != 2 || s.Activity.LastMonth != 3 {
		t.Fatalf("activity: %+v", s.Activity)
	}
	if s.Insights.MostActiveQuest != "1-data-modeling" || s.Insights.HighestScoringQuest != "1-data-modeling" {
		t.Fatalf("insights: %+v", s.Insights)
	}
	if len(s.Patterns) != 1 || s.Patterns[0].PatternName != "table_creation" || s.Patterns[0].UsageCount != 1 {
		t.Fatalf("patterns: %+v", s.Patterns)
	}
	if len(s.TopFiles) != 3 || s.TopFiles[0].LatestScore != 9 {
		t.Fatalf("top files: %+v", s.TopFiles)
	}

	progress, err := m.FileProgress(ctx, FileFilter{Quest: "1-data-modeling", OrderBy: "latest_score"})
	if err != nil {
		t.Fatalf("FileProgress: %v", err)
	}
	var tracked *FileProgress
	for i := range progress {
		if progress[i].FilePath == "quests/1-data-modeling/a/01.sql" {
			tracked = &progress[i]
		}
	}
	if tracked == nil || tracked.EvaluationCount != 2 || tracked.Improvement() != 4 || tracked.LatestGrade != "B" {
		t.Fatalf("file progress: %+v", tracked)
	}
	if tracked.LastEvaluatedAt == nil || tracked.FirstEvaluatedAt == nil || !tracked.LastEvaluatedAt.After(*tracked.FirstEvaluatedAt) {
		t.Fatalf("progress timestamps: %+v", tracked)
	}
}

func TestSystemHealth(t *testing.T) {
	cases := []struct {
		n    int64
		q    Quality
		want string
	}{
		{0, Quality{}, HealthNoData},
		{10, Quality{AverageScore: 8, SuccessRate: 0.8}, HealthHealthy},
		{10, Quality{AverageScore: 8, SuccessRate: 0.8, FallbackCount: 5}, HealthDegraded},
		{10, Quality{AverageScore: 6, SuccessRate: 0.4}, HealthNeedsAttention},
		{10, Quality{AverageScore: 3}, HealthCritical},
	}
	for _, tc := range cases {
		if got := SystemHealth(tc.n, tc.q); got != tc.want {
			t.Fatalf("SystemHealth(%d, %+v): want %s got %s", tc.n, tc.q, tc.want, got)
		}
	}
}

func TestReports_SingleEvaluation(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	at := time.Now().UTC().Add(-time.Hour)

	e := repotest.SeedEvaluation(t, ctx, db, "1-data-modeling", "quests/1-data-modeling/a/01.sql", 7, at)
	if err := db.Create(&types.EvaluationRecommendation{
		EvaluationID: e.ID, Position: 0, Priority: "High", ImplementationEffort: "Low", RecommendationText: "Name the constraint",
	}).Error; err != nil {
		t.Fatalf("seed recommendation: %v", err)
	}

	m := NewManager(repotest.Logger(t), db)
	quests, err := m.QuestPerformance(ctx)
	if err != nil {
		t.Fatalf("QuestPerformance: %v", err)
	}
	if len(quests) != 1 || quests[0].LastEvaluatedAt == nil || quests[0].LastEvaluatedAt.Sub(at).Abs() > time.Second {
		t.Fatalf("quest performance: %+v", quests)
	}

	files, err := m.FileProgress(ctx, FileFilter{})
	if err != nil {
		t.Fatalf("FileProgress: %v", err)
	}
	if len(files) != 1 || files[0].FirstEvaluatedAt == nil || files[0].LastEvaluatedAt == nil {
		t.Fatalf("file progress: %+v", files)
	}

	recs, err := m.Recommendations(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	if len(recs) != 1 || recs[0].EvaluatedAt == nil || recs[0].RecommendationText != "Name the constraint" {
		t.Fatalf("recommendations: %+v", recs)
	}

	if _, err := m.ComprehensiveSummary(ctx); err != nil {
		t.Fatalf("ComprehensiveSummary: %v", err)
	}
}

func TestSQLTime(t *testing.T) {
	want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	for _, in := range []any{
		want,
		"2026-03-01 10:30:00+00:00",
		[]byte("2026-03-01T10:30:00Z"),
		"2026-03-01 10:30:00",
	} {
		var got sqlTime
		if err := got.Scan(in); err != nil {
			t.Fatalf("Scan(%v): %v", in, err)
		}
		if !got.Valid || !got.Time.Equal(want) {
			t.Fatalf("Scan(%v) = %+v", in, got)
		}
		if v, err := got.Value(); err != nil || v == nil {
			t.Fatalf("Value: %v %v", v, err)
		}
	}

	var null sqlTime
	if err := null.Scan(nil); err != nil || null.ptr() != nil {
		t.Fatalf("nil scan: %+v %v", null, err)
	}
	if v, _ := null.Value(); v != nil {
		t.Fatalf("null value should be nil, got %v", v)
	}
	if err := null.Scan("not a time"); err == nil {
		t.Fatalf("expected parse error")
	}
}
