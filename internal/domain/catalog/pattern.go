package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pattern is a catalogued SQL idiom. Rows are append-only: evaluations reference them by name.
type Pattern struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	DisplayName     string    `gorm:"column:display_name;not null" json:"display_name"`
	Category        string    `gorm:"column:category;not null;index" json:"category"`
	ComplexityLevel string    `gorm:"column:complexity_level;not null" json:"complexity_level"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Pattern) TableName() string { return "pattern" }

func (p *Pattern) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
