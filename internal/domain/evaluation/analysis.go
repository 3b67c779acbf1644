package evaluation

// TechnicalReasoning is the technical half of the AI critique.
type TechnicalReasoning struct {
	Score                     float64  `json:"score" validate:"gte=0,lte=10"`
	Explanation               string   `json:"explanation" validate:"required"`
	Strengths                 []string `json:"strengths"`
	Weaknesses                []string `json:"weaknesses"`
	SyntaxQuality             string   `json:"syntax_quality" validate:"oneof=Excellent Good Fair Poor"`
	PerformanceConsiderations string   `json:"performance_considerations"`
}

// EducationalReasoning is the educational half of the AI critique.
type EducationalReasoning struct {
	Score              float64 `json:"score" validate:"gte=0,lte=10"`
	Explanation        string  `json:"explanation" validate:"required"`
	RealWorldRelevance string  `json:"real_world_relevance" validate:"oneof=High Medium Low"`
	PedagogicalValue   string  `json:"pedagogical_value" validate:"oneof=High Medium Low"`
}

type DetectedPattern struct {
	Name        string  `json:"name" validate:"required"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
	Quality     string  `json:"quality" validate:"oneof=Excellent Good Fair Poor"`
	Description string  `json:"description"`
}

// ComprehensiveAnalysis is the scored critique payload stored with each evaluation.
type ComprehensiveAnalysis struct {
	OverallFeedback  string               `json:"overall_feedback" validate:"required"`
	DifficultyLevel  string               `json:"difficulty_level"`
	TimeEstimate     string               `json:"time_estimate"`
	Technical        TechnicalReasoning   `json:"technical_analysis"`
	Educational      EducationalReasoning `json:"educational_analysis"`
	DetectedPatterns []DetectedPattern    `json:"detected_patterns" validate:"dive"`
}

type Assessment struct {
	Grade             Grade             `json:"grade" validate:"oneof=A B C D F"`
	Score             int               `json:"score" validate:"gte=1,lte=10"`
	OverallAssessment OverallAssessment `json:"overall_assessment" validate:"oneof=PASS NEEDS_REVIEW FAIL"`
}

type Recommendation struct {
	Priority             Priority `json:"priority" validate:"oneof=Low Medium High"`
	ImplementationEffort string   `json:"implementation_effort" validate:"oneof=Low Medium High"`
	RecommendationText   string   `json:"recommendation_text" validate:"required"`
}

// CallState is the state of one AI sub-call. Succeeded and FellBack are terminal.
type CallState string

const (
	CallAttempting CallState = "attempting"
	CallSucceeded  CallState = "succeeded"
	CallFellBack   CallState = "fallen_back"
)

// CallTrace records how one AI sub-call ended.
type CallTrace struct {
	Attempts  int       `json:"attempts"`
	State     CallState `json:"state"`
	LastError string    `json:"last_error,omitempty"`
}

type AnalysisTrace struct {
	Technical   CallTrace `json:"technical"`
	Educational CallTrace `json:"educational"`
}

// UsedFallback reports whether either sub-call was substituted.
func (t AnalysisTrace) UsedFallback() bool {
	return t.Technical.State == CallFellBack || t.Educational.State == CallFellBack
}

type ValidationReport struct {
	Corrected   bool     `json:"corrected"`
	Corrections []string `json:"corrections,omitempty"`
}

// Result is the single canonical outcome of analysing one file.
type Result struct {
	Analysis        ComprehensiveAnalysis `json:"analysis"`
	Assessment      Assessment            `json:"assessment"`
	Recommendations []Recommendation      `json:"recommendations" validate:"dive"`
	Trace           AnalysisTrace         `json:"trace"`
	Validation      ValidationReport      `json:"validation"`
}
