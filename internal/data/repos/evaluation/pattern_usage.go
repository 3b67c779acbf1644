package evaluation

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

type PatternUsageRepo interface {
	Create(dbc dbctx.Context, rows []*types.PatternUsage) ([]*types.PatternUsage, error)
}

type patternUsageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatternUsageRepo(db *gorm.DB, baseLog *logger.Logger) PatternUsageRepo {
	return &patternUsageRepo{db: db, log: baseLog.With("repo", "PatternUsageRepo")}
}

func (r *patternUsageRepo) Create(dbc dbctx.Context, rows []*types.PatternUsage) ([]*types.PatternUsage, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.PatternUsage{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Omit(clause.Associations).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
