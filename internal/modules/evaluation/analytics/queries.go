package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
)

type QuestPerformance struct {
	QuestName           string     `json:"quest_name"`
	EvaluationCount     int64      `json:"evaluation_count"`
	FileCount           int64      `json:"file_count"`
	AvgScore            float64    `json:"avg_score"`
	AvgTechnicalScore   float64    `json:"avg_technical_score"`
	AvgEducationalScore float64    `json:"avg_educational_score"`
	PassCount           int64      `json:"pass_count"`
	FallbackCount       int64      `json:"fallback_count"`
	LastEvaluatedAt     *time.Time `json:"last_evaluated_at"`
}

type PatternAnalysis struct {
	PatternName     string  `json:"pattern_name"`
	DisplayName     string  `json:"display_name"`
	Category        string  `json:"category"`
	ComplexityLevel string  `json:"complexity_level"`
	UsageCount      int64   `json:"usage_count"`
	FileCount       int64   `json:"file_count"`
	AvgConfidence   float64 `json:"avg_confidence"`
	AvgScore        float64 `json:"avg_score"`
}

type FileProgress struct {
	FilePath         string     `json:"file_path"`
	QuestName        string     `json:"quest_name"`
	SubcategoryName  string     `json:"subcategory_name"`
	EvaluationCount  int64      `json:"evaluation_count"`
	FirstEvaluatedAt *time.Time `json:"first_evaluated_at"`
	LastEvaluatedAt  *time.Time `json:"last_evaluated_at"`
	BestScore        int64      `json:"best_score"`
	AvgScore         float64    `json:"avg_score"`
	FirstScore       int64      `json:"first_score"`
	LatestScore      int64      `json:"latest_score"`
	LatestGrade      string     `json:"latest_grade"`
}

// Improvement is the latest score minus the first one.
func (f FileProgress) Improvement() int64 { return f.LatestScore - f.FirstScore }

type RecommendationItem struct {
	FilePath             string     `json:"file_path"`
	QuestName            string     `json:"quest_name"`
	Grade                string     `json:"grade"`
	Score                int64      `json:"score"`
	EvaluatedAt          *time.Time `json:"evaluated_at"`
	Position             int64      `json:"position"`
	Priority             string     `json:"priority"`
	ImplementationEffort string     `json:"implementation_effort"`
	RecommendationText   string     `json:"recommendation_text"`
}

type questPerformanceRow struct {
	QuestName           string
	EvaluationCount     int64
	FileCount           int64
	AvgScore            sql.NullFloat64
	AvgTechnicalScore   sql.NullFloat64
	AvgEducationalScore sql.NullFloat64
	PassCount           sql.NullInt64
	FallbackCount       sql.NullInt64
	LastEvaluatedAt     sqlTime
}

func (m *Manager) QuestPerformance(ctx context.Context) ([]QuestPerformance, error) {
	if err := m.ensureViews(ctx); err != nil {
		return nil, err
	}
	var rows []questPerformanceRow
	if err := (dbctx.Context{Ctx: ctx}).DB(m.db).
		Raw(`SELECT * FROM quest_performance ORDER BY quest_name`).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query quest_performance: %w", err)
	}
	out := make([]QuestPerformance, 0, len(rows))
	for _, r := range rows {
		out = append(out, QuestPerformance{
			QuestName:           r.QuestName,
			EvaluationCount:     r.EvaluationCount,
			FileCount:           r.FileCount,
			AvgScore:            nullFloat(r.AvgScore),
			AvgTechnicalScore:   nullFloat(r.AvgTechnicalScore),
			AvgEducationalScore: nullFloat(r.AvgEducationalScore),
			PassCount:           r.PassCount.Int64,
			FallbackCount:       r.FallbackCount.Int64,
			LastEvaluatedAt:     r.LastEvaluatedAt.ptr(),
		})
	}
	return out, nil
}

type patternAnalysisRow struct {
	PatternName     string
	DisplayName     string
	Category        string
	ComplexityLevel string
	UsageCount      int64
	FileCount       int64
	AvgConfidence   sql.NullFloat64
	AvgScore        sql.NullFloat64
}

// PatternAnalysis lists catalog patterns by usage. usedOnly drops patterns no
// evaluation references.
func (m *Manager) PatternAnalysis(ctx context.Context, usedOnly bool, limit int) ([]PatternAnalysis, error) {
	if err := m.ensureViews(ctx); err != nil {
		return nil, err
	}
	q := (dbctx.Context{Ctx: ctx}).DB(m.db).Table("pattern_analysis")
	if usedOnly {
		q = q.Where("usage_count > 0")
	}
	q = q.Order("usage_count DESC").Order("pattern_name ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []patternAnalysisRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query pattern_analysis: %w", err)
	}
	out := make([]PatternAnalysis, 0, len(rows))
	for _, r := range rows {
		out = append(out, PatternAnalysis{
			PatternName:     r.PatternName,
			DisplayName:     r.DisplayName,
			Category:        r.Category,
			ComplexityLevel: r.ComplexityLevel,
			UsageCount:      r.UsageCount,
			FileCount:       r.FileCount,
			AvgConfidence:   nullFloat(r.AvgConfidence),
			AvgScore:        nullFloat(r.AvgScore),
		})
	}
	return out, nil
}

type fileProgressRow struct {
	FilePath         string
	QuestName        string
	SubcategoryName  string
	EvaluationCount  int64
	FirstEvaluatedAt sqlTime
	LastEvaluatedAt  sqlTime
	BestScore        sql.NullInt64
	AvgScore         sql.NullFloat64
	FirstScore       sql.NullInt64
	LatestScore      sql.NullInt64
	LatestGrade      sql.NullString
}

type FileFilter struct {
	Quest string
	// OrderBy is "latest_score" (best first) or "recent" (default).
	OrderBy string
	Limit   int
}

func (m *Manager) FileProgress(ctx context.Context, f FileFilter) ([]FileProgress, error) {
	if err := m.ensureViews(ctx); err != nil {
		return nil, err
	}
	q := (dbctx.Context{Ctx: ctx}).DB(m.db).Table("file_progress")
	if quest := strings.TrimSpace(f.Quest); quest != "" {
		q = q.Where("quest_name = ?", quest)
	}
	switch f.OrderBy {
	case "latest_score":
		q = q.Order("latest_score DESC").Order("file_path ASC")
	default:
		q = q.Order("last_evaluated_at DESC").Order("file_path ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var rows []fileProgressRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query file_progress: %w", err)
	}
	out := make([]FileProgress, 0, len(rows))
	for _, r := range rows {
		out = append(out, FileProgress{
			FilePath:         r.FilePath,
			QuestName:        r.QuestName,
			SubcategoryName:  r.SubcategoryName,
			EvaluationCount:  r.EvaluationCount,
			FirstEvaluatedAt: r.FirstEvaluatedAt.ptr(),
			LastEvaluatedAt:  r.LastEvaluatedAt.ptr(),
			BestScore:        r.BestScore.Int64,
			AvgScore:         nullFloat(r.AvgScore),
			FirstScore:       r.FirstScore.Int64,
			LatestScore:      r.LatestScore.Int64,
			LatestGrade:      r.LatestGrade.String,
		})
	}
	return out, nil
}

type recommendationRow struct {
	FilePath             string
	QuestName            string
	Grade                string
	Score                int64
	EvaluatedAt          sqlTime
	Position             int64
	Priority             string
	ImplementationEffort string
	RecommendationText   string
}

// Recommendations returns the open recommendations of each file's latest
// evaluation, most urgent first.
func (m *Manager) Recommendations(ctx context.Context, priority string, limit int) ([]RecommendationItem, error) {
	if err := m.ensureViews(ctx); err != nil {
		return nil, err
	}
	q := (dbctx.Context{Ctx: ctx}).DB(m.db).Table("recommendations_dashboard")
	if p := strings.TrimSpace(priority); p != "" {
		q = q.Where("priority = ?", p)
	}
	q = q.Order("CASE priority WHEN 'High' THEN 0 WHEN 'Medium' THEN 1 ELSE 2 END").
		Order("score ASC").
		Order("file_path ASC").
		Order("position ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []recommendationRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query recommendations_dashboard: %w", err)
	}
	out := make([]RecommendationItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, RecommendationItem{
			FilePath:             r.FilePath,
			QuestName:            r.QuestName,
			Grade:                r.Grade,
			Score:                r.Score,
			EvaluatedAt:          r.EvaluatedAt.ptr(),
			Position:             r.Position,
			Priority:             r.Priority,
			ImplementationEffort: r.ImplementationEffort,
			RecommendationText:   r.RecommendationText,
		})
	}
	return out, nil
}
