package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
)

var EvaluationAggregateContract = Contract{
	Name:          "Evaluation",
	Tables:        []string{"evaluation", "pattern_usage", "evaluation_recommendation"},
	AppendOnly:    true,
	WriteAttempts: 3,
}

type PatternUsageInput struct {
	PatternName string
	Confidence  float64
}

type PersistEvaluationInput struct {
	Evaluation      *evaluation.Evaluation
	PatternUsages   []PatternUsageInput
	Recommendations []evaluation.Recommendation
}

type PersistEvaluationResult struct {
	EvaluationID    uuid.UUID
	LinkedPatterns  int
	UnknownPatterns []string
	Recommendations int
}

// EvaluationAggregate is the persistence gateway for scored evaluations.
type EvaluationAggregate interface {
	Aggregate
	Persist(ctx context.Context, in PersistEvaluationInput) (PersistEvaluationResult, error)
}
