package types

import (
	"time"

	"github.com/google/uuid"
)

type Module struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"unit_id"`
	Unit        *Unit      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UnitID;references:ID" json:"unit,omitempty"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description" json:"description"`
	Position    int        `gorm:"column:position;not null" json:"position"`
	Lessons     []*Lesson  `gorm:"foreignKey:ModuleID;references:ID" json:"lessons,omitempty"`
	Quizzes     []*Quiz    `gorm:"foreignKey:ModuleID;references:ID" json:"quizzes,omitempty"`
	Projects    []*Project `gorm:"foreignKey:ModuleID;references:ID" json:"projects,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string { return "module" }
