package analysis

import (
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
)

const (
	technicalSchemaName   = "sql_technical_analysis_v1"
	educationalSchemaName = "sql_educational_analysis_v1"
)

func levelEnum() []any {
	return []any{evaluation.LevelHigh, evaluation.LevelMedium, evaluation.LevelLow}
}

func scoreSchema() map[string]any {
	return map[string]any{"type": "number", "minimum": 0, "maximum": 10}
}

func stringList() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func schemaTechnicalV1() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":       scoreSchema(),
			"explanation": map[string]any{"type": "string"},
			"strengths":   stringList(),
			"weaknesses":  stringList(),
			"syntax_quality": map[string]any{
				"type": "string",
				"enum": []any{evaluation.QualityExcellent, evaluation.QualityGood, evaluation.QualityFair, evaluation.QualityPoor},
			},
			"performance_considerations": map[string]any{"type": "string"},
		},
		"required":             []any{"score", "explanation", "strengths", "weaknesses", "syntax_quality", "performance_considerations"},
		"additionalProperties": false,
	}
}

func schemaEducationalV1() map[string]any {
	difficulties := make([]any, 0, len(evaluation.Difficulties))
	for _, d := range evaluation.Difficulties {
		difficulties = append(difficulties, d)
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score":                scoreSchema(),
			"explanation":          map[string]any{"type": "string"},
			"real_world_relevance": map[string]any{"type": "string", "enum": levelEnum()},
			"pedagogical_value":    map[string]any{"type": "string", "enum": levelEnum()},
			"overall_feedback":     map[string]any{"type": "string"},
			"difficulty_level":     map[string]any{"type": "string", "enum": difficulties},
			"time_estimate":        map[string]any{"type": "string"},
			"recommendations": map[string]any{
				"type":     "array",
				"maxItems": 5,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"priority":              map[string]any{"type": "string", "enum": levelEnum()},
						"implementation_effort": map[string]any{"type": "string", "enum": levelEnum()},
						"recommendation_text":   map[string]any{"type": "string"},
					},
					"required":             []any{"priority", "implementation_effort", "recommendation_text"},
					"additionalProperties": false,
				},
			},
		},
		"required": []any{
			"score", "explanation", "real_world_relevance", "pedagogical_value",
			"overall_feedback", "difficulty_level", "time_estimate", "recommendations",
		},
		"additionalProperties": false,
	}
}

// educationalResponse is the decoded educational sub-call. The reasoning block
// is embedded so both share one flat JSON object.
type educationalResponse struct {
	evaluation.EducationalReasoning
	OverallFeedback string                      `json:"overall_feedback" validate:"required"`
	DifficultyLevel string                      `json:"difficulty_level" validate:"oneof=Beginner Intermediate Advanced Expert"`
	TimeEstimate    string                      `json:"time_estimate"`
	Recommendations []evaluation.Recommendation `json:"recommendations" validate:"dive"`
}
