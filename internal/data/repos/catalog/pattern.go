package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

// PatternRepo has no update or delete: pattern rows are append-only.
type PatternRepo interface {
	// CreateIgnoreDuplicates inserts rows whose name is not yet catalogued and
	// returns how many were inserted.
	CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Pattern) (int, error)

	GetByNames(dbc dbctx.Context, names []string) ([]*types.Pattern, error)
	List(dbc dbctx.Context) ([]*types.Pattern, error)
	Count(dbc dbctx.Context) (int64, error)
}

type patternRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatternRepo(db *gorm.DB, baseLog *logger.Logger) PatternRepo {
	return &patternRepo{db: db, log: baseLog.With("repo", "PatternRepo")}
}

func (r *patternRepo) CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Pattern) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

func (r *patternRepo) GetByNames(dbc dbctx.Context, names []string) ([]*types.Pattern, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Pattern
	if len(names) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("name IN ?", names).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *patternRepo) List(dbc dbctx.Context) ([]*types.Pattern, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Pattern
	if err := t.WithContext(dbc.Ctx).
		Order("category ASC, name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *patternRepo) Count(dbc dbctx.Context) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).Model(&types.Pattern{}).Count(&n).Error
	return n, err
}
