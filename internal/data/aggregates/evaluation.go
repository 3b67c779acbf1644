package aggregates

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos"
	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
	domainagg "github.com/brunolnetto/sql-adventure-sub001/internal/domain/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/evaluation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
)

type EvaluationAggregateDeps struct {
	Base BaseDeps

	Evaluations     repos.EvaluationRepo
	Patterns        repos.PatternRepo
	PatternUsages   repos.PatternUsageRepo
	Recommendations repos.RecommendationRepo
}

type evaluationAggregate struct {
	deps EvaluationAggregateDeps
}

func NewEvaluationAggregate(deps EvaluationAggregateDeps) domainagg.EvaluationAggregate {
	deps.Base = deps.Base.withDefaults()
	deps.Base.Log = deps.Base.Log.With("aggregate", "EvaluationAggregate")
	return &evaluationAggregate{deps: deps}
}

func (a *evaluationAggregate) Contract() domainagg.Contract {
	return domainagg.EvaluationAggregateContract
}

// Persist writes the evaluation, its pattern usages and its recommendations in
// one transaction. Pattern names missing from the catalog are reported and skipped.
func (a *evaluationAggregate) Persist(ctx context.Context, in domainagg.PersistEvaluationInput) (domainagg.PersistEvaluationResult, error) {
	op := a.Contract().Op("Persist")
	var out domainagg.PersistEvaluationResult

	row := in.Evaluation
	if row == nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing evaluation", nil)
	}
	if strings.TrimSpace(row.FilePath) == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing file_path", nil)
	}
	if row.ID != uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeInvariantViolation, op, "evaluation already persisted", nil)
	}
	if a.deps.Evaluations == nil || a.deps.Patterns == nil || a.deps.PatternUsages == nil || a.deps.Recommendations == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "evaluation aggregate repos not configured", nil)
	}

	usages := dedupeUsages(in.PatternUsages)

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		// Reset per attempt so a failed transaction leaves no stale state behind.
		out = domainagg.PersistEvaluationResult{}
		row.ID = uuid.Nil

		if err := a.deps.Evaluations.Create(dbc, row); err != nil {
			return err
		}

		names := make([]string, 0, len(usages))
		for _, u := range usages {
			names = append(names, u.PatternName)
		}
		catalogued, err := a.deps.Patterns.GetByNames(dbc, names)
		if err != nil {
			return err
		}
		byName := make(map[string]uuid.UUID, len(catalogued))
		for _, p := range catalogued {
			byName[p.Name] = p.ID
		}

		links := make([]*types.PatternUsage, 0, len(usages))
		for _, u := range usages {
			pid, ok := byName[u.PatternName]
			if !ok {
				out.UnknownPatterns = append(out.UnknownPatterns, u.PatternName)
				continue
			}
			links = append(links, &types.PatternUsage{
				EvaluationID: row.ID,
				PatternID:    pid,
				Confidence:   evaluation.ClampConfidence(u.Confidence),
			})
		}
		if _, err := a.deps.PatternUsages.Create(dbc, links); err != nil {
			return err
		}

		recs := make([]*types.EvaluationRecommendation, 0, len(in.Recommendations))
		for i, r := range in.Recommendations {
			recs = append(recs, &types.EvaluationRecommendation{
				EvaluationID:         row.ID,
				Position:             i,
				Priority:             string(r.Priority),
				ImplementationEffort: r.ImplementationEffort,
				RecommendationText:   r.RecommendationText,
			})
		}
		if _, err := a.deps.Recommendations.Create(dbc, recs); err != nil {
			return err
		}

		out.EvaluationID = row.ID
		out.LinkedPatterns = len(links)
		out.Recommendations = len(recs)
		return nil
	})
	if err != nil {
		row.ID = uuid.Nil
		return domainagg.PersistEvaluationResult{}, err
	}
	if len(out.UnknownPatterns) > 0 {
		a.deps.Base.Log.Warn("Skipped pattern usages not in catalog",
			"evaluation_id", out.EvaluationID,
			"file_path", row.FilePath,
			"patterns", out.UnknownPatterns,
		)
	}
	return out, nil
}

// dedupeUsages keeps the highest confidence per pattern name, sorted by name.
func dedupeUsages(in []domainagg.PatternUsageInput) []domainagg.PatternUsageInput {
	best := map[string]float64{}
	for _, u := range in {
		name := strings.TrimSpace(u.PatternName)
		if name == "" {
			continue
		}
		if cur, ok := best[name]; !ok || u.Confidence > cur {
			best[name] = u.Confidence
		}
	}
	out := make([]domainagg.PatternUsageInput, 0, len(best))
	for name, c := range best {
		out = append(out, domainagg.PatternUsageInput{PatternName: name, Confidence: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PatternName < out[j].PatternName })
	return out
}
