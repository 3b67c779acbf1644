package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/brunolnetto/sql-adventure-sub001/internal/data/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/data/repos"
	domainagg "github.com/brunolnetto/sql-adventure-sub001/internal/domain/aggregates"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/analysis"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/analytics"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/catalogsync"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/patterns"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/pipeline"
	"github.com/brunolnetto/sql-adventure-sub001/internal/modules/evaluation/validation"
	"github.com/brunolnetto/sql-adventure-sub001/internal/observability"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

type Services struct {
	Patterns    *patterns.Catalog
	Detector    *patterns.Detector
	Analyzer    *analysis.Orchestrator
	Validator   *validation.Validator
	Catalog     domainagg.CatalogAggregate
	Evaluations domainagg.EvaluationAggregate
	CatalogSync *catalogsync.Service
	Analytics   *analytics.Manager
	Pipeline    *pipeline.Runner
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, reposet repos.Set, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := patterns.DefaultCatalog()
	if err != nil {
		return Services{}, fmt.Errorf("load pattern catalog: %w", err)
	}
	detector := patterns.NewDetector(catalog)

	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(metrics, log),
	}
	// Concurrent syncs against one database diff the same quest rows.
	catalogBase := base
	catalogBase.Runner = aggregates.NewSerializableTxRunner(db)
	catalogAgg := aggregates.NewCatalogAggregate(aggregates.CatalogAggregateDeps{
		Base:          catalogBase,
		Quests:        reposet.Quests,
		Subcategories: reposet.Subcategories,
		Patterns:      reposet.Patterns,
	})
	evaluationAgg := aggregates.NewEvaluationAggregate(aggregates.EvaluationAggregateDeps{
		Base:            base,
		Evaluations:     reposet.Evaluations,
		Patterns:        reposet.Patterns,
		PatternUsages:   reposet.PatternUsages,
		Recommendations: reposet.Recommendations,
	})

	analyzer := analysis.NewOrchestrator(log, clients.OpenAI, catalog, metrics, analysis.Config{
		Model:          cfg.OpenAI.Model,
		MaxAttempts:    cfg.Analysis.MaxAttempts,
		AttemptTimeout: cfg.Analysis.AttemptTimeout,
		RetryBackoff:   cfg.Analysis.RetryBackoff,
	})
	validator := validation.New(log, metrics)

	runner, err := pipeline.NewRunner(pipeline.Deps{
		Log:         log,
		Metrics:     metrics,
		Detector:    detector,
		Executor:    clients.Executor,
		Analyzer:    analyzer,
		Validator:   validator,
		Evaluations: evaluationAgg,
		Events:      clients.Events,
	}, pipeline.Config{Concurrency: cfg.Concurrency})
	if err != nil {
		return Services{}, fmt.Errorf("init pipeline: %w", err)
	}

	return Services{
		Patterns:    catalog,
		Detector:    detector,
		Analyzer:    analyzer,
		Validator:   validator,
		Catalog:     catalogAgg,
		Evaluations: evaluationAgg,
		CatalogSync: catalogsync.NewService(log, catalogAgg, metrics),
		Analytics:   analytics.NewManager(log, db),
		Pipeline:    runner,
	}, nil
}
