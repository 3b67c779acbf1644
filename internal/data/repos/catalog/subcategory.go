package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

type SubcategoryRepo interface {
	// CreateIfAbsent inserts row unless (quest_id, name) already exists.
	CreateIfAbsent(dbc dbctx.Context, row *types.Subcategory) (bool, error)

	GetByQuestAndName(dbc dbctx.Context, questID uuid.UUID, name string) (*types.Subcategory, error)
	GetByQuestIDs(dbc dbctx.Context, questIDs []uuid.UUID) ([]*types.Subcategory, error)
	Count(dbc dbctx.Context) (int64, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type subcategoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubcategoryRepo(db *gorm.DB, baseLog *logger.Logger) SubcategoryRepo {
	return &subcategoryRepo{db: db, log: baseLog.With("repo", "SubcategoryRepo")}
}

func (r *subcategoryRepo) CreateIfAbsent(dbc dbctx.Context, row *types.Subcategory) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.QuestID == uuid.Nil || strings.TrimSpace(row.Name) == "" {
		return false, nil
	}
	res := t.WithContext(dbc.Ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "quest_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *subcategoryRepo) GetByQuestAndName(dbc dbctx.Context, questID uuid.UUID, name string) (*types.Subcategory, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if questID == uuid.Nil {
		return nil, nil
	}
	var out []*types.Subcategory
	if err := t.WithContext(dbc.Ctx).
		Where("quest_id = ? AND name = ?", questID, name).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *subcategoryRepo) GetByQuestIDs(dbc dbctx.Context, questIDs []uuid.UUID) ([]*types.Subcategory, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Subcategory
	if len(questIDs) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("quest_id IN ?", questIDs).
		Order("quest_id ASC, order_index ASC, name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subcategoryRepo) Count(dbc dbctx.Context) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).Model(&types.Subcategory{}).Count(&n).Error
	return n, err
}

func (r *subcategoryRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Subcategory{}).
		Where("id = ?", id).
		Updates(updates).Error
}
