package types

import (
	"time"

	"github.com/google/uuid"
)

type Lesson struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID    *uuid.UUID         `gorm:"type:uuid;index" json:"module_id,omitempty"`
	Module      *Module            `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	CreatorID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"creator_id"`
	Title       string             `gorm:"column:title;not null" json:"title"`
	Description string             `gorm:"column:description" json:"description"`
	Position    int                `gorm:"column:position;not null" json:"position"`
	Published   bool               `gorm:"column:published;not null;default:false" json:"published"`
	Exercises   []*Exercise        `gorm:"foreignKey:LessonID;references:ID" json:"exercises,omitempty"`
	Variations  []*TheoryVariation `gorm:"foreignKey:LessonID;references:ID" json:"variations,omitempty"`
	CreatedAt   time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }
