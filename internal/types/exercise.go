package types

import (
	"time"

	"github.com/google/uuid"
)

type Exercise struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"lesson_id"`
	Lesson        *Lesson        `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	Title         string         `gorm:"column:title;not null" json:"title"`
	CodeType      CodeType       `gorm:"column:code_type;not null" json:"code_type"`
	StarterHTML   string         `gorm:"column:starter_html" json:"starter_html"`
	StarterCSS    string         `gorm:"column:starter_css" json:"starter_css"`
	StarterJS     string         `gorm:"column:starter_js" json:"starter_js"`
	StarterPython string         `gorm:"column:starter_python" json:"starter_python"`
	Position      int            `gorm:"column:position;not null" json:"position"`
	Instructions  []*Instruction `gorm:"foreignKey:ExerciseID;references:ID" json:"instructions,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (Exercise) TableName() string { return "exercise" }
