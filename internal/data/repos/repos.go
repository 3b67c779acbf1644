package repos

import (
	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos/catalog"
	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
	"gorm.io/gorm"
)

type QuestRepo = catalog.QuestRepo
type SubcategoryRepo = catalog.SubcategoryRepo
type PatternRepo = catalog.PatternRepo

type EvaluationRepo = evaluation.EvaluationRepo
type PatternUsageRepo = evaluation.PatternUsageRepo
type RecommendationRepo = evaluation.RecommendationRepo

func NewQuestRepo(db *gorm.DB, baseLog *logger.Logger) QuestRepo {
	return catalog.NewQuestRepo(db, baseLog)
}
func NewSubcategoryRepo(db *gorm.DB, baseLog *logger.Logger) SubcategoryRepo {
	return catalog.NewSubcategoryRepo(db, baseLog)
}
func NewPatternRepo(db *gorm.DB, baseLog *logger.Logger) PatternRepo {
	return catalog.NewPatternRepo(db, baseLog)
}

func NewEvaluationRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationRepo {
	return evaluation.NewEvaluationRepo(db, baseLog)
}
func NewPatternUsageRepo(db *gorm.DB, baseLog *logger.Logger) PatternUsageRepo {
	return evaluation.NewPatternUsageRepo(db, baseLog)
}
func NewRecommendationRepo(db *gorm.DB, baseLog *logger.Logger) RecommendationRepo {
	return evaluation.NewRecommendationRepo(db, baseLog)
}

// Set bundles every table repo for app wiring.
type Set struct {
	Quests          QuestRepo
	Subcategories   SubcategoryRepo
	Patterns        PatternRepo
	Evaluations     EvaluationRepo
	PatternUsages   PatternUsageRepo
	Recommendations RecommendationRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Quests:          NewQuestRepo(db, baseLog),
		Subcategories:   NewSubcategoryRepo(db, baseLog),
		Patterns:        NewPatternRepo(db, baseLog),
		Evaluations:     NewEvaluationRepo(db, baseLog),
		PatternUsages:   NewPatternUsageRepo(db, baseLog),
		Recommendations: NewRecommendationRepo(db, baseLog),
	}
}
