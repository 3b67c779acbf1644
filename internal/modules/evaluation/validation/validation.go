package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/observability"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

const (
	PlaceholderFeedback       = "No feedback was provided."
	PlaceholderExplanation    = "No explanation was provided."
	PlaceholderRecommendation = "Review this exercise manually."
)

// Validator coerces a Result into its declared ranges and value sets. It never
// rejects: every violation is repaired and listed in Result.Validation.
type Validator struct {
	log      *logger.Logger
	metrics  *observability.Metrics
	validate *validator.Validate
}

func New(log *logger.Logger, metrics *observability.Metrics) *Validator {
	if log == nil {
		log = logger.Nop()
	}
	return &Validator{
		log:      log.With("service", "ResultValidator"),
		metrics:  metrics,
		validate: validator.New(),
	}
}

type fixer struct {
	fields []string
}

func (f *fixer) note(field string) { f.fields = append(f.fields, field) }

// Validate returns a copy of res that satisfies every structural invariant.
func (v *Validator) Validate(res evaluation.Result) evaluation.Result {
	f := &fixer{}
	out := res

	out.Analysis = fixAnalysis(f, res.Analysis)
	out.Assessment = fixAssessment(f, res.Assessment)
	out.Recommendations = fixRecommendations(f, res.Recommendations)

	out.Validation = evaluation.ValidationReport{
		Corrected:   len(f.fields) > 0,
		Corrections: f.fields,
	}
	for _, field := range f.fields {
		v.metrics.IncValidationCorrection(field)
	}

	if err := v.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		fields := []string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace())
			}
		}
		v.log.Error("Result still invalid after coercion", "fields", fields, "error", err)
	}
	return out
}

func fixAnalysis(f *fixer, a evaluation.ComprehensiveAnalysis) evaluation.ComprehensiveAnalysis {
	if strings.TrimSpace(a.OverallFeedback) == "" {
		a.OverallFeedback = PlaceholderFeedback
		f.note("analysis.overall_feedback")
	}

	t := a.Technical
	if s := evaluation.ClampSubScore(t.Score); s != t.Score {
		t.Score = s
		f.note("analysis.technical_analysis.score")
	}
	if strings.TrimSpace(t.Explanation) == "" {
		t.Explanation = PlaceholderExplanation
		f.note("analysis.technical_analysis.explanation")
	}
	if q, ok := matchOneOf(t.SyntaxQuality, qualities); !ok || q != t.SyntaxQuality {
		if !ok {
			q = evaluation.QualityPoor
		}
		t.SyntaxQuality = q
		f.note("analysis.technical_analysis.syntax_quality")
	}
	if t.Strengths == nil {
		t.Strengths = []string{}
	}
	if t.Weaknesses == nil {
		t.Weaknesses = []string{}
	}
	a.Technical = t

	e := a.Educational
	if s := evaluation.ClampSubScore(e.Score); s != e.Score {
		e.Score = s
		f.note("analysis.educational_analysis.score")
	}
	if strings.TrimSpace(e.Explanation) == "" {
		e.Explanation = PlaceholderExplanation
		f.note("analysis.educational_analysis.explanation")
	}
	e.RealWorldRelevance = fixLevel(f, e.RealWorldRelevance, "analysis.educational_analysis.real_world_relevance", evaluation.LevelLow)
	e.PedagogicalValue = fixLevel(f, e.PedagogicalValue, "analysis.educational_analysis.pedagogical_value", evaluation.LevelLow)
	a.Educational = e

	patterns := make([]evaluation.DetectedPattern, 0, len(a.DetectedPatterns))
	for _, p := range a.DetectedPatterns {
		if strings.TrimSpace(p.Name) == "" {
			f.note("analysis.detected_patterns.name")
			continue
		}
		if c := evaluation.ClampConfidence(p.Confidence); c != p.Confidence {
			p.Confidence = c
			f.note("analysis.detected_patterns.confidence")
		}
		if q, ok := matchOneOf(p.Quality, qualities); !ok || q != p.Quality {
			if !ok {
				q = evaluation.QualityForConfidence(p.Confidence)
			}
			p.Quality = q
			f.note("analysis.detected_patterns.quality")
		}
		patterns = append(patterns, p)
	}
	a.DetectedPatterns = patterns
	return a
}

func fixAssessment(f *fixer, a evaluation.Assessment) evaluation.Assessment {
	if s := evaluation.ClampScore(a.Score); s != a.Score {
		a.Score = s
		f.note("assessment.score")
	}
	if g := RepairGrade(string(a.Grade), a.Score); g != a.Grade {
		a.Grade = g
		f.note("assessment.grade")
	}
	if o := RepairOverallAssessment(string(a.OverallAssessment), a.Score); o != a.OverallAssessment {
		a.OverallAssessment = o
		f.note("assessment.overall_assessment")
	}
	return a
}

func fixRecommendations(f *fixer, recs []evaluation.Recommendation) []evaluation.Recommendation {
	out := make([]evaluation.Recommendation, 0, len(recs))
	for _, r := range recs {
		if strings.TrimSpace(r.RecommendationText) == "" {
			r.RecommendationText = PlaceholderRecommendation
			f.note("recommendations.recommendation_text")
		}
		if p, ok := matchOneOf(string(r.Priority), levels); !ok || p != string(r.Priority) {
			if !ok {
				p = string(evaluation.PriorityMedium)
			}
			r.Priority = evaluation.Priority(p)
			f.note("recommendations.priority")
		}
		r.ImplementationEffort = fixLevel(f, r.ImplementationEffort, "recommendations.implementation_effort", evaluation.LevelMedium)
		out = append(out, r)
	}
	return out
}

func fixLevel(f *fixer, v, field, fallback string) string {
	l, ok := matchOneOf(v, levels)
	if !ok {
		l = fallback
	}
	if l != v {
		f.note(field)
	}
	return l
}

var (
	qualities = []string{evaluation.QualityExcellent, evaluation.QualityGood, evaluation.QualityFair, evaluation.QualityPoor}
	levels    = []string{evaluation.LevelHigh, evaluation.LevelMedium, evaluation.LevelLow}
)

// matchOneOf finds v in allowed ignoring case and surrounding space.
func matchOneOf(v string, allowed []string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return a, true
		}
	}
	return "", false
}

// RepairGrade maps grade text to a known letter. A leading A/B/C/D/F wins
// ("b+" is B), E becomes F, anything else is derived from score.
func RepairGrade(raw string, score int) evaluation.Grade {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s != "" {
		switch s[0] {
		case 'A', 'B', 'C', 'D', 'F':
			return evaluation.Grade(s[:1])
		case 'E':
			return evaluation.GradeF
		}
	}
	return evaluation.GradeForScore(score)
}

// RepairOverallAssessment normalizes assessment text; unknown text is derived from score.
func RepairOverallAssessment(raw string, score int) evaluation.OverallAssessment {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	switch s {
	case "PASS", "PASSED", "PASSING":
		return evaluation.AssessmentPass
	case "NEEDS_REVIEW", "NEEDSREVIEW", "REVIEW", "NEEDS_IMPROVEMENT":
		return evaluation.AssessmentNeedsReview
	case "FAIL", "FAILED", "FAILING":
		return evaluation.AssessmentFail
	}
	return evaluation.AssessmentForScore(score)
}
