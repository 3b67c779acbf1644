package evaluation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/catalog"
)

// PatternUsage links an Evaluation to a catalogued Pattern with the detector's confidence.
type PatternUsage struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	EvaluationID uuid.UUID        `gorm:"type:uuid;column:evaluation_id;not null;uniqueIndex:idx_pattern_usage_eval_pattern" json:"evaluation_id"`
	Evaluation   *Evaluation      `gorm:"constraint:OnDelete:CASCADE;foreignKey:EvaluationID;references:ID" json:"-"`
	PatternID    uuid.UUID        `gorm:"type:uuid;column:pattern_id;not null;uniqueIndex:idx_pattern_usage_eval_pattern;index" json:"pattern_id"`
	Pattern      *catalog.Pattern `gorm:"constraint:OnDelete:RESTRICT;foreignKey:PatternID;references:ID" json:"pattern,omitempty"`
	Confidence   float64          `gorm:"column:confidence;not null" json:"confidence"`
	CreatedAt    time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (PatternUsage) TableName() string { return "pattern_usage" }

func (u *PatternUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
