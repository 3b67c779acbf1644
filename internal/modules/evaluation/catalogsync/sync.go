package catalogsync

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	domainagg "github.com/brunolnetto/sql-adventure-sub001/internal/domain/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/discovery"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/patterns"
	"github.com/brunolnetto/sql-adventure-sub001/internal/observability"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

var tracer = otel.Tracer("sqleval/catalogsync")

type Report struct {
	QuestsCreated   int `json:"quests_created"`
	QuestsUpdated   int `json:"quests_updated"`
	QuestsUnchanged int `json:"quests_unchanged"`

	SubcategoriesCreated   int `json:"subcategories_created"`
	SubcategoriesUpdated   int `json:"subcategories_updated"`
	SubcategoriesUnchanged int `json:"subcategories_unchanged"`

	PatternsCreated  int `json:"patterns_created"`
	PatternsExisting int `json:"patterns_existing"`

	FailedQuests []string `json:"failed_quests,omitempty"`
}

// Updates counts quest and subcategory rows whose fields were rewritten.
func (r Report) Updates() int { return r.QuestsUpdated + r.SubcategoriesUpdated }

type Service struct {
	log     *logger.Logger
	catalog domainagg.CatalogAggregate
	metrics *observability.Metrics
}

func NewService(log *logger.Logger, catalog domainagg.CatalogAggregate, metrics *observability.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{log: log.With("service", "CatalogSync"), catalog: catalog, metrics: metrics}
}

// Sync reconciles discovered quests and the pattern catalog with the store.
// A failing quest is reported and the rest still sync; nothing is deleted.
func (s *Service) Sync(ctx context.Context, quests []discovery.Quest, defs []patterns.Definition) (Report, error) {
	ctx, span := tracer.Start(ctx, "catalogsync.Sync")
	defer span.End()

	var rep Report
	if s.catalog == nil {
		return rep, fmt.Errorf("catalog aggregate not configured")
	}

	var errs []error
	for _, q := range quests {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := s.catalog.SyncQuest(ctx, QuestInput(q))
		if err != nil {
			rep.FailedQuests = append(rep.FailedQuests, q.Name)
			errs = append(errs, fmt.Errorf("sync quest %s: %w", q.Name, err))
			s.log.Warn("Quest sync failed", "quest", q.Name, "error", err)
			continue
		}
		switch {
		case res.QuestCreated:
			rep.QuestsCreated++
		case res.QuestUpdated:
			rep.QuestsUpdated++
			s.log.Debug("Quest updated", "quest", q.Name, "fields", res.UpdatedFields)
		default:
			rep.QuestsUnchanged++
		}
		rep.SubcategoriesCreated += res.SubcategoriesCreated
		rep.SubcategoriesUpdated += res.SubcategoriesUpdated
		rep.SubcategoriesUnchanged += res.SubcategoriesUnchanged
	}

	if len(defs) > 0 && ctx.Err() == nil {
		pres, err := s.catalog.EnsurePatterns(ctx, PatternInputs(defs))
		if err != nil {
			errs = append(errs, fmt.Errorf("sync patterns: %w", err))
		} else {
			rep.PatternsCreated = pres.Created
			rep.PatternsExisting = pres.Existing
		}
	}

	s.metrics.AddCatalogChanges("quest", "created", rep.QuestsCreated)
	s.metrics.AddCatalogChanges("quest", "updated", rep.QuestsUpdated)
	s.metrics.AddCatalogChanges("subcategory", "created", rep.SubcategoriesCreated)
	s.metrics.AddCatalogChanges("subcategory", "updated", rep.SubcategoriesUpdated)
	s.metrics.AddCatalogChanges("pattern", "created", rep.PatternsCreated)

	span.SetAttributes(
		attribute.Int("quests_created", rep.QuestsCreated),
		attribute.Int("updates", rep.Updates()),
		attribute.Int("patterns_created", rep.PatternsCreated),
	)
	s.log.Info("Catalog sync finished",
		"quests_created", rep.QuestsCreated,
		"quests_updated", rep.QuestsUpdated,
		"subcategories_created", rep.SubcategoriesCreated,
		"subcategories_updated", rep.SubcategoriesUpdated,
		"patterns_created", rep.PatternsCreated,
		"failed", len(rep.FailedQuests),
	)
	return rep, errors.Join(errs...)
}

func QuestInput(q discovery.Quest) domainagg.QuestInput {
	subs := make([]domainagg.SubcategoryInput, 0, len(q.Subcategories))
	for _, s := range q.Subcategories {
		subs = append(subs, domainagg.SubcategoryInput{
			Name:            s.Name,
			DisplayName:     s.DisplayName,
			Description:     s.Description,
			DifficultyLevel: s.Difficulty,
			OrderIndex:      s.OrderIndex,
		})
	}
	return domainagg.QuestInput{
		Name:            q.Name,
		DisplayName:     q.DisplayName,
		Description:     q.Description,
		DifficultyLevel: q.Difficulty,
		OrderIndex:      q.OrderIndex,
		Subcategories:   subs,
	}
}

func PatternInputs(defs []patterns.Definition) []domainagg.PatternInput {
	out := make([]domainagg.PatternInput, 0, len(defs))
	for _, d := range defs {
		out = append(out, domainagg.PatternInput{
			Name:            d.Name,
			DisplayName:     d.DisplayName,
			Category:        d.Category,
			ComplexityLevel: d.Complexity,
			Description:     d.Description,
		})
	}
	return out
}
