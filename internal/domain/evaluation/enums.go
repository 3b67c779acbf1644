package evaluation

type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Grades lists every grade from best to worst.
var Grades = []Grade{GradeA, GradeB, GradeC, GradeD, GradeF}

type OverallAssessment string

const (
	AssessmentPass        OverallAssessment = "PASS"
	AssessmentNeedsReview OverallAssessment = "NEEDS_REVIEW"
	AssessmentFail        OverallAssessment = "FAIL"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities is ordered from most to least urgent.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Quality tiers used for syntax quality and detected pattern quality.
const (
	QualityExcellent = "Excellent"
	QualityGood      = "Good"
	QualityFair      = "Fair"
	QualityPoor      = "Poor"
)

// Levels used for pedagogical value, real-world relevance and implementation effort.
const (
	LevelHigh   = "High"
	LevelMedium = "Medium"
	LevelLow    = "Low"
)

const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
	DifficultyExpert       = "Expert"
	DifficultyUnknown      = "Unknown"
)

// Difficulties lists the recognised difficulty labels in ascending order.
var Difficulties = []string{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert}
