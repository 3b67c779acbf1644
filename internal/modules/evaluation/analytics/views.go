package analytics

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
)

type viewDef struct {
	name string
	body string
}

// Views are plain SELECTs over the base tables, portable between PostgreSQL
// and SQLite. Order matters only for readability; no view reads another.
var views = []viewDef{
	{
		name: "evaluation_summary",
		body: `
SELECT
  e.id AS evaluation_id,
  e.file_path,
  e.file_name,
  e.quest_name,
  e.subcategory_name,
  e.grade,
  e.score,
  e.overall_assessment,
  e.technical_score,
  e.educational_score,
  e.execution_success,
  e.used_fallback,
  e.validation_corrected,
  e.evaluated_at,
  (SELECT COUNT(*) FROM pattern_usage pu WHERE pu.evaluation_id = e.id) AS pattern_count,
  (SELECT COUNT(*) FROM evaluation_recommendation r WHERE r.evaluation_id = e.id) AS recommendation_count
FROM evaluation e`,
	},
	{
		name: "quest_performance",
		body: `
SELECT
  e.quest_name,
  COUNT(*) AS evaluation_count,
  COUNT(DISTINCT e.file_path) AS file_count,
  AVG(e.score) AS avg_score,
  AVG(e.technical_score) AS avg_technical_score,
  AVG(e.educational_score) AS avg_educational_score,
  SUM(CASE WHEN e.overall_assessment = 'PASS' THEN 1 ELSE 0 END) AS pass_count,
  SUM(CASE WHEN e.used_fallback THEN 1 ELSE 0 END) AS fallback_count,
  MAX(e.evaluated_at) AS last_evaluated_at
FROM evaluation e
GROUP BY e.quest_name`,
	},
	{
		name: "pattern_analysis",
		body: `
SELECT
  p.name AS pattern_name,
  p.display_name,
  p.category,
  p.complexity_level,
  COUNT(pu.id) AS usage_count,
  COUNT(DISTINCT e.file_path) AS file_count,
  AVG(pu.confidence) AS avg_confidence,
  AVG(e.score) AS avg_score
FROM pattern p
LEFT JOIN pattern_usage pu ON pu.pattern_id = p.id
LEFT JOIN evaluation e ON e.id = pu.evaluation_id
GROUP BY p.id, p.name, p.display_name, p.category, p.complexity_level`,
	},
	{
		name: "file_progress",
		body: `
SELECT
  e.file_path,
  e.quest_name,
  e.subcategory_name,
  COUNT(*) AS evaluation_count,
  MIN(e.evaluated_at) AS first_evaluated_at,
  MAX(e.evaluated_at) AS last_evaluated_at,
  MAX(e.score) AS best_score,
  AVG(e.score) AS avg_score,
  (SELECT l.score FROM evaluation l WHERE l.file_path = e.file_path ORDER BY l.evaluated_at DESC, l.id DESC LIMIT 1) AS latest_score,
  (SELECT l.grade FROM evaluation l WHERE l.file_path = e.file_path ORDER BY l.evaluated_at DESC, l.id DESC LIMIT 1) AS latest_grade,
  (SELECT f.score FROM evaluation f WHERE f.file_path = e.file_path ORDER BY f.evaluated_at ASC, f.id ASC LIMIT 1) AS first_score
FROM evaluation e
GROUP BY e.file_path, e.quest_name, e.subcategory_name`,
	},
	{
		name: "recommendations_dashboard",
		body: `
SELECT
  e.file_path,
  e.quest_name,
  e.grade,
  e.score,
  e.evaluated_at,
  r.position,
  r.priority,
  r.implementation_effort,
  r.recommendation_text
FROM evaluation_recommendation r
JOIN evaluation e ON e.id = r.evaluation_id
WHERE e.id = (
  SELECT l.id FROM evaluation l
  WHERE l.file_path = e.file_path
  ORDER BY l.evaluated_at DESC, l.id DESC
  LIMIT 1
)`,
	},
}

// ViewNames lists the derived views in build order.
func ViewNames() []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.name)
	}
	return out
}

// BuildViews drops and recreates every derived view in one transaction.
// Safe to run any number of times.
func (m *Manager) BuildViews(ctx context.Context) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, v := range views {
			if err := dbc.DB(m.db).Exec("DROP VIEW IF EXISTS " + v.name).Error; err != nil {
				return fmt.Errorf("drop view %s: %w", v.name, err)
			}
			if err := dbc.DB(m.db).Exec("CREATE VIEW " + v.name + " AS" + v.body).Error; err != nil {
				return fmt.Errorf("create view %s: %w", v.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.viewsReady.Store(true)
	m.log.Info("Analytics views rebuilt", "views", ViewNames())
	return nil
}

func (m *Manager) ensureViews(ctx context.Context) error {
	if m.viewsReady.Load() {
		return nil
	}
	return m.BuildViews(ctx)
}
