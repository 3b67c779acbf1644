package evaluation

import "math"

const (
	MinScore = 1
	MaxScore = 10
)

// CombineScores averages the two sub-scores with equal weight, rounds half away
// from zero and clamps into [MinScore, MaxScore].
func CombineScores(technical, educational float64) int {
	avg := (ClampSubScore(technical) + ClampSubScore(educational)) / 2
	return ClampScore(int(math.Round(avg)))
}

func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// ClampSubScore bounds a sub-score to [0,10]; NaN collapses to 0.
func ClampSubScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func ClampConfidence(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func GradeForScore(score int) Grade {
	switch {
	case score >= 9:
		return GradeA
	case score >= 7:
		return GradeB
	case score >= 5:
		return GradeC
	case score >= 3:
		return GradeD
	default:
		return GradeF
	}
}

func AssessmentForScore(score int) OverallAssessment {
	switch {
	case score >= 7:
		return AssessmentPass
	case score >= 5:
		return AssessmentNeedsReview
	default:
		return AssessmentFail
	}
}

// AssessFromScores builds the Assessment for a pair of sub-scores.
func AssessFromScores(technical, educational float64) Assessment {
	score := CombineScores(technical, educational)
	return Assessment{
		Grade:             GradeForScore(score),
		Score:             score,
		OverallAssessment: AssessmentForScore(score),
	}
}

// QualityForConfidence maps a detector confidence onto a quality tier.
func QualityForConfidence(c float64) string {
	switch {
	case c >= 0.9:
		return QualityExcellent
	case c >= 0.75:
		return QualityGood
	case c >= 0.5:
		return QualityFair
	default:
		return QualityPoor
	}
}
