package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
)

const (
	HealthNoData         = "NO_DATA"
	HealthHealthy        = "HEALTHY"
	HealthNeedsAttention = "NEEDS_ATTENTION"
	HealthDegraded       = "DEGRADED"
	HealthCritical       = "CRITICAL"

	topN = 10
)

type Overview struct {
	Quests         int64 `json:"quests"`
	Subcategories  int64 `json:"subcategories"`
	Patterns       int64 `json:"patterns"`
	Evaluations    int64 `json:"evaluations"`
	FilesEvaluated int64 `json:"files_evaluated"`
}

type Quality struct {
	AverageScore            float64 `json:"average_score"`
	AverageTechnicalScore   float64 `json:"average_technical_score"`
	AverageEducationalScore float64 `json:"average_educational_score"`
	// SuccessRate is the PASS share over every stored evaluation.
	SuccessRate          float64          `json:"success_rate"`
	ExecutionSuccessRate float64          `json:"execution_success_rate"`
	GradeCounts          map[string]int64 `json:"grade_counts"`
	PriorityCounts       map[string]int64 `json:"priority_counts"`
	FallbackCount        int64            `json:"fallback_count"`
	CorrectedCount       int64            `json:"corrected_count"`
}

type Activity struct {
	LastDay   int64 `json:"last_day"`
	LastWeek  int64 `json:"last_week"`
	LastMonth int64 `json:"last_month"`
}

type Insights struct {
	MostActiveQuest     string   `json:"most_active_quest,omitempty"`
	HighestScoringQuest string   `json:"highest_scoring_quest,omitempty"`
	SystemHealth        string   `json:"system_health"`
	Notes               []string `json:"notes"`
}

type Summary struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Overview    Overview           `json:"overview"`
	Quality     Quality            `json:"quality"`
	Activity    Activity           `json:"activity"`
	Quests      []QuestPerformance `json:"quests"`
	TopFiles    []FileProgress     `json:"top_files"`
	Patterns    []PatternAnalysis  `json:"patterns"`
	Insights    Insights           `json:"insights"`
}

type totalsRow struct {
	Evaluations      int64
	FilesEvaluated   int64
	SumScore         float64
	SumTechnical     float64
	SumEducational   float64
	PassCount        int64
	ExecutionSuccess int64
	FallbackCount    int64
	CorrectedCount   int64
}

// ComprehensiveSummary builds the cross-cutting report. An empty store yields
// zero counts and empty lists.
func (m *Manager) ComprehensiveSummary(ctx context.Context) (Summary, error) {
	now := m.now()
	s := Summary{
		GeneratedAt: now,
		Quality: Quality{
			GradeCounts:    zeroCounts(gradeKeys()),
			PriorityCounts: zeroCounts(priorityKeys()),
		},
		Quests:   []QuestPerformance{},
		TopFiles: []FileProgress{},
		Patterns: []PatternAnalysis{},
		Insights: Insights{Notes: []string{}},
	}
	if err := m.ensureViews(ctx); err != nil {
		return s, err
	}
	db := (dbctx.Context{Ctx: ctx}).DB(m.db)

	for table, dst := range map[string]*int64{
		"quest":       &s.Overview.Quests,
		"subcategory": &s.Overview.Subcategories,
		"pattern":     &s.Overview.Patterns,
	} {
		if err := db.Table(table).Count(dst).Error; err != nil {
			return s, fmt.Errorf("count %s: %w", table, err)
		}
	}

	var totals totalsRow
	if err := db.Raw(`
SELECT
  COUNT(*) AS evaluations,
  COUNT(DISTINCT file_path) AS files_evaluated,
  COALESCE(SUM(score), 0) AS sum_score,
  COALESCE(SUM(technical_score), 0) AS sum_technical,
  COALESCE(SUM(educational_score), 0) AS sum_educational,
  COALESCE(SUM(CASE WHEN overall_assessment = 'PASS' THEN 1 ELSE 0 END), 0) AS pass_count,
  COALESCE(SUM(CASE WHEN execution_success THEN 1 ELSE 0 END), 0) AS execution_success,
  COALESCE(SUM(CASE WHEN used_fallback THEN 1 ELSE 0 END), 0) AS fallback_count,
  COALESCE(SUM(CASE WHEN validation_corrected THEN 1 ELSE 0 END), 0) AS corrected_count
FROM evaluation_summary`).Scan(&totals).Error; err != nil {
		return s, fmt.Errorf("evaluation totals: %w", err)
	}
	s.Overview.Evaluations = totals.Evaluations
	s.Overview.FilesEvaluated = totals.FilesEvaluated
	s.Quality.FallbackCount = totals.FallbackCount
	s.Quality.CorrectedCount = totals.CorrectedCount
	if n := float64(totals.Evaluations); n > 0 {
		s.Quality.AverageScore = round2(totals.SumScore / n)
		s.Quality.AverageTechnicalScore = round2(totals.SumTechnical / n)
		s.Quality.AverageEducationalScore = round2(totals.SumEducational / n)
		s.Quality.SuccessRate = round2(float64(totals.PassCount) / n)
		s.Quality.ExecutionSuccessRate = round2(float64(totals.ExecutionSuccess) / n)
	}

	type bucket struct {
		Label string
		Total int64
	}
	var grades []bucket
	if err := db.Raw(`SELECT grade AS label, COUNT(*) AS total FROM evaluation_summary GROUP BY grade`).Scan(&grades).Error; err != nil {
		return s, fmt.Errorf("grade counts: %w", err)
	}
	for _, g := range grades {
		s.Quality.GradeCounts[g.Label] += g.Total
	}
	var priorities []bucket
	if err := db.Raw(`SELECT priority AS label, COUNT(*) AS total FROM recommendations_dashboard GROUP BY priority`).Scan(&priorities).Error; err != nil {
		return s, fmt.Errorf("priority counts: %w", err)
	}
	for _, p := range priorities {
		s.Quality.PriorityCounts[p.Label] += p.Total
	}

	for since, dst := range map[time.Duration]*int64{
		24 * time.Hour:      &s.Activity.LastDay,
		7 * 24 * time.Hour:  &s.Activity.LastWeek,
		30 * 24 * time.Hour: &s.Activity.LastMonth,
	} {
		if err := db.Table("evaluation").Where("evaluated_at >= ?", now.Add(-since)).Count(dst).Error; err != nil {
			return s, fmt.Errorf("activity counts: %w", err)
		}
	}

	quests, err := m.QuestPerformance(ctx)
	if err != nil {
		return s, err
	}
	s.Quests = quests
	top, err := m.FileProgress(ctx, FileFilter{OrderBy: "latest_score", Limit: topN})
	if err != nil {
		return s, err
	}
	s.TopFiles = top
	pats, err := m.PatternAnalysis(ctx, true, topN)
	if err != nil {
		return s, err
	}
	s.Patterns = pats

	s.Insights = deriveInsights(s)
	return s, nil
}

func deriveInsights(s Summary) Insights {
	in := Insights{Notes: []string{}, SystemHealth: SystemHealth(s.Overview.Evaluations, s.Quality)}

	var mostActive, best *QuestPerformance
	for i := range s.Quests {
		q := &s.Quests[i]
		if mostActive == nil || q.EvaluationCount > mostActive.EvaluationCount {
			mostActive = q
		}
		if best == nil || q.AvgScore > best.AvgScore {
			best = q
		}
	}
	if mostActive != nil {
		in.MostActiveQuest = mostActive.QuestName
		in.Notes = append(in.Notes, fmt.Sprintf("Most active quest: %s (%d evaluations)", mostActive.QuestName, mostActive.EvaluationCount))
	}
	if best != nil {
		in.HighestScoringQuest = best.QuestName
		in.Notes = append(in.Notes, fmt.Sprintf("Highest scoring quest: %s (average %.2f)", best.QuestName, best.AvgScore))
	}
	if n := s.Quality.PriorityCounts[string(evaluation.PriorityHigh)]; n > 0 {
		in.Notes = append(in.Notes, fmt.Sprintf("%d high-priority recommendations are open", n))
	}
	if s.Quality.FallbackCount > 0 {
		in.Notes = append(in.Notes, fmt.Sprintf("%d evaluations used fallback analysis", s.Quality.FallbackCount))
	}
	if s.Overview.Evaluations == 0 {
		in.Notes = append(in.Notes, "No evaluations recorded yet")
	}
	return in
}

// SystemHealth labels the evaluation history. A high fallback share outranks
// the score-based labels since those scores are not real assessments.
func SystemHealth(evaluations int64, q Quality) string {
	if evaluations == 0 {
		return HealthNoData
	}
	if float64(q.FallbackCount)/float64(evaluations) > 0.25 {
		return HealthDegraded
	}
	switch {
	case q.AverageScore >= 7 && q.SuccessRate >= 0.7:
		return HealthHealthy
	case q.AverageScore >= 5:
		return HealthNeedsAttention
	default:
		return HealthCritical
	}
}

func gradeKeys() []string {
	out := make([]string, 0, len(evaluation.Grades))
	for _, g := range evaluation.Grades {
		out = append(out, string(g))
	}
	return out
}

func priorityKeys() []string {
	out := make([]string, 0, len(evaluation.Priorities))
	for _, p := range evaluation.Priorities {
		out = append(out, string(p))
	}
	return out
}

func zeroCounts(keys []string) map[string]int64 {
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k] = 0
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
