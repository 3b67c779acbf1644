package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subcategory groups exercise files inside a quest; unique by (quest_id, name).
type Subcategory struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestID         uuid.UUID `gorm:"type:uuid;column:quest_id;not null;uniqueIndex:idx_subcategory_quest_name" json:"quest_id"`
	Quest           *Quest    `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestID;references:ID" json:"quest,omitempty"`
	Name            string    `gorm:"column:name;not null;uniqueIndex:idx_subcategory_quest_name" json:"name"`
	DisplayName     string    `gorm:"column:display_name;not null" json:"display_name"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	DifficultyLevel string    `gorm:"column:difficulty_level;not null" json:"difficulty_level"`
	OrderIndex      int       `gorm:"column:order_index;not null;index" json:"order_index"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Subcategory) TableName() string { return "subcategory" }

func (s *Subcategory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
