package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
)

func SeedQuest(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, order int) *types.Quest {
	tb.Helper()
	q := &types.Quest{
		Name:            name,
		DisplayName:     name,
		DifficultyLevel: "Beginner",
		OrderIndex:      order,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quest: %v", err)
	}
	return q
}

func SeedPattern(tb testing.TB, ctx context.Context, tx *gorm.DB, name, category string) *types.Pattern {
	tb.Helper()
	p := &types.Pattern{
		Name:            name,
		DisplayName:     name,
		Category:        category,
		ComplexityLevel: "Basic",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed pattern: %v", err)
	}
	return p
}

// SeedEvaluation inserts a minimal evaluation for quest/file with the given score.
func SeedEvaluation(tb testing.TB, ctx context.Context, tx *gorm.DB, quest, filePath string, score int, at time.Time) *types.Evaluation {
	tb.Helper()
	e := &types.Evaluation{
		FilePath:          filePath,
		FileName:          filePath,
		QuestName:         quest,
		SubcategoryName:   "1-basics",
		Analysis:          datatypes.JSON([]byte(`{}`)),
		Grade:             string(evaluation.GradeForScore(score)),
		Score:             score,
		OverallAssessment: string(evaluation.AssessmentForScore(score)),
		TechnicalScore:    float64(score),
		EducationalScore:  float64(score),
		EvaluatedAt:       at,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed evaluation: %v", err)
	}
	return e
}

// PatternUsages returns the pattern links of one evaluation, highest confidence first.
func PatternUsages(tb testing.TB, ctx context.Context, tx *gorm.DB, evaluationID uuid.UUID) []*types.PatternUsage {
	tb.Helper()
	var out []*types.PatternUsage
	if err := tx.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		Order("confidence DESC").
		Find(&out).Error; err != nil {
		tb.Fatalf("load pattern usages: %v", err)
	}
	return out
}

// Recommendations returns the recommendations of one evaluation in position order.
func Recommendations(tb testing.TB, ctx context.Context, tx *gorm.DB, evaluationID uuid.UUID) []*types.EvaluationRecommendation {
	tb.Helper()
	var out []*types.EvaluationRecommendation
	if err := tx.WithContext(ctx).
		Where("evaluation_id = ?", evaluationID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		tb.Fatalf("load recommendations: %v", err)
	}
	return out
}
