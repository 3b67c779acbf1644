package evaluation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/brunolnetto/sql-adventure-sub001/internal/domain"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/dbctx"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

// EvaluationRepo is append-only: no Update or Delete.
type EvaluationRepo interface {
	Create(dbc dbctx.Context, row *types.Evaluation) error

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Evaluation, error)
	ListByFilePath(dbc dbctx.Context, filePath string) ([]*types.Evaluation, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.Evaluation, error)
	Count(dbc dbctx.Context) (int64, error)
}

type evaluationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEvaluationRepo(db *gorm.DB, baseLog *logger.Logger) EvaluationRepo {
	return &evaluationRepo{db: db, log: baseLog.With("repo", "EvaluationRepo")}
}

func (r *evaluationRepo) Create(dbc dbctx.Context, row *types.Evaluation) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *evaluationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Evaluation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Evaluation
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *evaluationRepo) ListByFilePath(dbc dbctx.Context, filePath string) ([]*types.Evaluation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Evaluation
	if err := t.WithContext(dbc.Ctx).
		Where("file_path = ?", filePath).
		Order("evaluated_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *evaluationRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.Evaluation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.Evaluation
	if err := t.WithContext(dbc.Ctx).
		Order("evaluated_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *evaluationRepo) Count(dbc dbctx.Context) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	err := t.WithContext(dbc.Ctx).Model(&types.Evaluation{}).Count(&n).Error
	return n, err
}
