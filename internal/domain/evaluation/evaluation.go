package evaluation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrImmutable is returned by any attempt to update or delete an Evaluation.
var ErrImmutable = errors.New("evaluation rows are immutable")

// Evaluation is one scored analysis of one file at one point in time.
// Rows are append-only; the hooks below refuse updates and deletes.
type Evaluation struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FilePath        string    `gorm:"column:file_path;not null;index" json:"file_path"`
	FileName        string    `gorm:"column:file_name;not null" json:"file_name"`
	QuestName       string    `gorm:"column:quest_name;not null;index" json:"quest_name"`
	SubcategoryName string    `gorm:"column:subcategory_name;not null" json:"subcategory_name"`

	// Metadata holds the extracted {purpose, difficulty, concepts} header block.
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	// Execution holds the sandbox execution evidence, when available.
	Execution        datatypes.JSON `gorm:"column:execution" json:"execution"`
	ExecutionSuccess bool           `gorm:"column:execution_success;not null;default:false" json:"execution_success"`

	// Analysis is the full structured Result document.
	Analysis datatypes.JSON `gorm:"column:analysis;not null" json:"analysis"`

	Grade             string  `gorm:"column:grade;not null;index" json:"grade"`
	Score             int     `gorm:"column:score;not null" json:"score"`
	OverallAssessment string  `gorm:"column:overall_assessment;not null" json:"overall_assessment"`
	TechnicalScore    float64 `gorm:"column:technical_score;not null" json:"technical_score"`
	EducationalScore  float64 `gorm:"column:educational_score;not null" json:"educational_score"`

	ValidationCorrected bool `gorm:"column:validation_corrected;not null;default:false" json:"validation_corrected"`
	UsedFallback        bool `gorm:"column:used_fallback;not null;default:false" json:"used_fallback"`

	EvaluatedAt time.Time `gorm:"column:evaluated_at;not null;index" json:"evaluated_at"`
}

func (Evaluation) TableName() string { return "evaluation" }

func (e *Evaluation) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = time.Now().UTC()
	}
	return nil
}

func (e *Evaluation) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutable
}

func (e *Evaluation) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutable
}
