package types

import (
	"time"

	"github.com/google/uuid"
)

type TaskInstruction struct {
	ID        uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID              `gorm:"type:uuid;not null;index" json:"task_id"`
	Task      *ProjectTask           `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskID;references:ID" json:"task,omitempty"`
	Title     string                 `gorm:"column:title;not null" json:"title"`
	Content   string                 `gorm:"column:content" json:"content"`
	Position  int                    `gorm:"column:position;not null" json:"position"`
	Answer    *TaskInstructionAnswer `gorm:"foreignKey:TaskInstructionID;references:ID" json:"answer,omitempty"`
	CreatedAt time.Time              `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time              `gorm:"not null" json:"updated_at"`
}

func (TaskInstruction) TableName() string { return "task_instruction" }
