package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quest is a top-level curriculum unit, keyed by its directory name.
type Quest struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	DisplayName     string    `gorm:"column:display_name;not null" json:"display_name"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	DifficultyLevel string    `gorm:"column:difficulty_level;not null" json:"difficulty_level"`
	OrderIndex      int       `gorm:"column:order_index;not null;index" json:"order_index"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Quest) TableName() string { return "quest" }

func (q *Quest) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
