package types

import (
	"time"

	"github.com/google/uuid"
)

type ProjectTask struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"project_id"`
	Project       *Project           `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Title         string             `gorm:"column:title;not null" json:"title"`
	Description   string             `gorm:"column:description" json:"description"`
	TaskType      TaskType           `gorm:"column:task_type;not null" json:"task_type"`
	CodeType      CodeType           `gorm:"column:code_type;not null" json:"code_type"`
	StarterHTML   string             `gorm:"column:starter_html" json:"starter_html"`
	StarterCSS    string             `gorm:"column:starter_css" json:"starter_css"`
	StarterJS     string             `gorm:"column:starter_js" json:"starter_js"`
	StarterPython string             `gorm:"column:starter_python" json:"starter_python"`
	Position      int                `gorm:"column:position;not null" json:"position"`
	Instructions  []*TaskInstruction `gorm:"foreignKey:TaskID;references:ID" json:"instructions,omitempty"`
	CreatedAt     time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"not null" json:"updated_at"`
}

func (ProjectTask) TableName() string { return "project_task" }
