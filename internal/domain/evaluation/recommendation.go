package evaluation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvaluationRecommendation struct {
	ID                   uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	EvaluationID         uuid.UUID   `gorm:"type:uuid;column:evaluation_id;not null;index" json:"evaluation_id"`
	Evaluation           *Evaluation `gorm:"constraint:OnDelete:CASCADE;foreignKey:EvaluationID;references:ID" json:"-"`
	Position             int         `gorm:"column:position;not null" json:"position"`
	Priority             string      `gorm:"column:priority;not null;index" json:"priority"`
	ImplementationEffort string      `gorm:"column:implementation_effort;not null" json:"implementation_effort"`
	RecommendationText   string      `gorm:"column:recommendation_text;type:text;not null" json:"recommendation_text"`
	CreatedAt            time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (EvaluationRecommendation) TableName() string { return "evaluation_recommendation" }

func (r *EvaluationRecommendation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
