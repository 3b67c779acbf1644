package aggregates

import (
	"context"

	"github.com/google/uuid"
)

// CatalogAggregateContract: one transaction per quest. Natural-key races
// resolve as reads, and patterns are never deleted or rewritten.
var CatalogAggregateContract = Contract{
	Name:          "Catalog",
	Tables:        []string{"quest", "subcategory", "pattern"},
	WriteAttempts: 3,
}

type SubcategoryInput struct {
	Name        string
	DisplayName string
	Description string
	// DifficultyLevel empty means inherit the quest's difficulty.
	DifficultyLevel string
	OrderIndex      int
}

type QuestInput struct {
	Name            string
	DisplayName     string
	Description     string
	DifficultyLevel string
	OrderIndex      int
	Subcategories   []SubcategoryInput
}

type PatternInput struct {
	Name            string
	DisplayName     string
	Category        string
	ComplexityLevel string
	Description     string
}

type SyncQuestResult struct {
	QuestID       uuid.UUID
	QuestCreated  bool
	QuestUpdated  bool
	UpdatedFields []string

	SubcategoriesCreated   int
	SubcategoriesUpdated   int
	SubcategoriesUnchanged int
}

type EnsurePatternsResult struct {
	Created  int
	Existing int
}

// CatalogAggregate reconciles discovered curriculum structure with stored rows.
type CatalogAggregate interface {
	Aggregate
	SyncQuest(ctx context.Context, in QuestInput) (SyncQuestResult, error)
	EnsurePatterns(ctx context.Context, in []PatternInput) (EnsurePatternsResult, error)
}
