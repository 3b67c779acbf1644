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

type QuestRepo interface {
	// CreateIfAbsent inserts row unless a quest with the same name exists.
	// It reports whether this call created the row.
	CreateIfAbsent(dbc dbctx.Context, row *types.Quest) (bool, error)

	GetByName(dbc dbctx.Context, name string) (*types.Quest, error)
	GetByNames(dbc dbctx.Context, names []string) ([]*types.Quest, error)
	List(dbc dbctx.Context) ([]*types.Quest, error)
	Count(dbc dbctx.Context) (int64, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type questRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestRepo(db *gorm.DB, baseLog *logger.Logger) QuestRepo {
	return &questRepo{db: db, log: baseLog.With("repo", "QuestRepo")}
}

func (r *questRepo) CreateIfAbsent(dbc dbctx.Context, row *types.Quest) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || strings.TrimSpace(row.Name) == "" {
		return false, nil
	}
	res := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *questRepo) GetByName(dbc dbctx.Context, name string) (*types.Quest, error) {
	rows, err := r.GetByNames(dbc, []string{name})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *questRepo) GetByNames(dbc dbctx.Context, names []string) ([]*types.Quest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Quest
	if len(names) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("name IN ?", names).
		Order("order_index ASC, name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questRepo) List(dbc dbctx.Context) ([]*types.Quest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Quest
	if err := t.WithContext(dbc.Ctx).
		Order("order_index ASC, name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *questRepo) Count(dbc dbctx.Context) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).Model(&types.Quest{}).Count(&n).Error
	return n, err
}

func (r *questRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Quest{}).
		Where("id = ?", id).
		Updates(updates).Error
}
