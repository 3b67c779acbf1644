package domain

import (
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/catalog"
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
)

// Catalog
type Quest = catalog.Quest
type Subcategory = catalog.Subcategory
type Pattern = catalog.Pattern

// Evaluation history
type Evaluation = evaluation.Evaluation
type PatternUsage = evaluation.PatternUsage
type EvaluationRecommendation = evaluation.EvaluationRecommendation

// Analysis payload
type ComprehensiveAnalysis = evaluation.ComprehensiveAnalysis
type TechnicalReasoning = evaluation.TechnicalReasoning
type EducationalReasoning = evaluation.EducationalReasoning
type DetectedPattern = evaluation.DetectedPattern
type Assessment = evaluation.Assessment
type Recommendation = evaluation.Recommendation
type EvaluationResult = evaluation.Result

// AllModels lists every persisted table in migration order.
func AllModels() []any {
	return []any{
		&Quest{},
		&Subcategory{},
		&Pattern{},
		&Evaluation{},
		&PatternUsage{},
		&EvaluationRecommendation{},
	}
}
