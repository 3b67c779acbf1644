package aggregates

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos"
	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
	domainagg "github.com/brunolnetto/sql-adventure-sub001/internal/domain/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
)

type CatalogAggregateDeps struct {
	Base BaseDeps

	Quests        repos.QuestRepo
	Subcategories repos.SubcategoryRepo
	Patterns      repos.PatternRepo
}

type catalogAggregate struct {
	deps CatalogAggregateDeps
}

func NewCatalogAggregate(deps CatalogAggregateDeps) domainagg.CatalogAggregate {
	deps.Base = deps.Base.withDefaults()
	deps.Base.Log = deps.Base.Log.With("aggregate", "CatalogAggregate")
	return &catalogAggregate{deps: deps}
}

func (a *catalogAggregate) Contract() domainagg.Contract {
	return domainagg.CatalogAggregateContract
}

// SyncQuest creates the quest and its subcategories when absent and otherwise
// writes only the fields that changed. A lost insert race is read back and
// diffed like any existing row.
func (a *catalogAggregate) SyncQuest(ctx context.Context, in domainagg.QuestInput) (domainagg.SyncQuestResult, error) {
	op := a.Contract().Op("SyncQuest")
	var out domainagg.SyncQuestResult

	if strings.TrimSpace(in.Name) == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing quest name", nil)
	}
	if a.deps.Quests == nil || a.deps.Subcategories == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		out = domainagg.SyncQuestResult{}

		quest, created, err := a.upsertQuest(dbc, in)
		if err != nil {
			return err
		}
		out.QuestID = quest.ID
		out.QuestCreated = created
		if !created {
			fields := questChanges(quest, in)
			if len(fields) > 0 {
				out.UpdatedFields = sortedKeys(fields)
				if err := a.deps.Quests.UpdateFields(dbc, quest.ID, fields); err != nil {
					return err
				}
				out.QuestUpdated = true
			}
		}

		for _, sub := range in.Subcategories {
			if strings.TrimSpace(sub.Name) == "" {
				continue
			}
			if strings.TrimSpace(sub.DifficultyLevel) == "" {
				sub.DifficultyLevel = in.DifficultyLevel
			}
			row, created, err := a.upsertSubcategory(dbc, quest.ID, sub)
			if err != nil {
				return err
			}
			if created {
				out.SubcategoriesCreated++
				continue
			}
			fields := subcategoryChanges(row, sub)
			if len(fields) == 0 {
				out.SubcategoriesUnchanged++
				continue
			}
			if err := a.deps.Subcategories.UpdateFields(dbc, row.ID, fields); err != nil {
				return err
			}
			out.SubcategoriesUpdated++
		}
		return nil
	})
	if err != nil {
		return domainagg.SyncQuestResult{}, err
	}
	return out, nil
}

func (a *catalogAggregate) upsertQuest(dbc dbctx.Context, in domainagg.QuestInput) (*types.Quest, bool, error) {
	existing, err := a.deps.Quests.GetByName(dbc, in.Name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	row := &types.Quest{
		Name:            in.Name,
		DisplayName:     in.DisplayName,
		Description:     in.Description,
		DifficultyLevel: in.DifficultyLevel,
		OrderIndex:      in.OrderIndex,
	}
	created, err := a.deps.Quests.CreateIfAbsent(dbc, row)
	if err != nil {
		return nil, false, err
	}
	if created {
		return row, true, nil
	}
	existing, err = a.deps.Quests.GetByName(dbc, in.Name)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, domainagg.NewError(domainagg.CodeConflict, "Catalog.SyncQuest", "quest vanished after conflict", nil)
	}
	return existing, false, nil
}

func (a *catalogAggregate) upsertSubcategory(dbc dbctx.Context, questID uuid.UUID, in domainagg.SubcategoryInput) (*types.Subcategory, bool, error) {
	existing, err := a.deps.Subcategories.GetByQuestAndName(dbc, questID, in.Name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}
	row := &types.Subcategory{
		QuestID:         questID,
		Name:            in.Name,
		DisplayName:     in.DisplayName,
		Description:     in.Description,
		DifficultyLevel: in.DifficultyLevel,
		OrderIndex:      in.OrderIndex,
	}
	created, err := a.deps.Subcategories.CreateIfAbsent(dbc, row)
	if err != nil {
		return nil, false, err
	}
	if created {
		return row, true, nil
	}
	existing, err = a.deps.Subcategories.GetByQuestAndName(dbc, questID, in.Name)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, domainagg.NewError(domainagg.CodeConflict, "Catalog.SyncQuest", "subcategory vanished after conflict", nil)
	}
	return existing, false, nil
}

// EnsurePatterns inserts catalog patterns that are missing. Existing rows are
// never modified.
func (a *catalogAggregate) EnsurePatterns(ctx context.Context, in []domainagg.PatternInput) (domainagg.EnsurePatternsResult, error) {
	op := a.Contract().Op("EnsurePatterns")
	var out domainagg.EnsurePatternsResult
	if a.deps.Patterns == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}

	seen := map[string]bool{}
	rows := make([]*types.Pattern, 0, len(in))
	for _, p := range in {
		name := strings.TrimSpace(p.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		rows = append(rows, &types.Pattern{
			Name:            name,
			DisplayName:     p.DisplayName,
			Category:        p.Category,
			ComplexityLevel: p.ComplexityLevel,
			Description:     p.Description,
		})
	}
	if len(rows) == 0 {
		return out, nil
	}

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		created, err := a.deps.Patterns.CreateIgnoreDuplicates(dbc, rows)
		if err != nil {
			return err
		}
		out = domainagg.EnsurePatternsResult{Created: created, Existing: len(rows) - created}
		return nil
	})
	if err != nil {
		return domainagg.EnsurePatternsResult{}, err
	}
	return out, nil
}

func questChanges(row *types.Quest, in domainagg.QuestInput) map[string]interface{} {
	fields := map[string]interface{}{}
	if row.Description != in.Description {
		fields["description"] = in.Description
	}
	if row.DifficultyLevel != in.DifficultyLevel {
		fields["difficulty_level"] = in.DifficultyLevel
	}
	if row.OrderIndex != in.OrderIndex {
		fields["order_index"] = in.OrderIndex
	}
	return fields
}

func subcategoryChanges(row *types.Subcategory, in domainagg.SubcategoryInput) map[string]interface{} {
	fields := map[string]interface{}{}
	if row.Description != in.Description {
		fields["description"] = in.Description
	}
	if row.DifficultyLevel != in.DifficultyLevel {
		fields["difficulty_level"] = in.DifficultyLevel
	}
	if row.OrderIndex != in.OrderIndex {
		fields["order_index"] = in.OrderIndex
	}
	return fields
}

func sortedKeys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
