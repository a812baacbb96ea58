package types

import (
	"time"

	"github.com/google/uuid"
)

// TaskInstructionAnswer mirrors InstructionAnswer for project task
// instructions.
type TaskInstructionAnswer struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TaskInstructionID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"task_instruction_id"`
	TaskInstruction   *TaskInstruction `gorm:"constraint:OnDelete:CASCADE;foreignKey:TaskInstructionID;references:ID" json:"task_instruction,omitempty"`
	AnswerHTML        string           `gorm:"column:answer_html" json:"answer_html"`
	AnswerCSS         string           `gorm:"column:answer_css" json:"answer_css"`
	AnswerJS          string           `gorm:"column:answer_js" json:"answer_js"`
	AnswerPython      string           `gorm:"column:answer_python" json:"answer_python"`
	CreatedAt         time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"not null" json:"updated_at"`
}

func (TaskInstructionAnswer) TableName() string { return "task_instruction_answer" }

func (a *TaskInstructionAnswer) SetCode(ct CodeType, code string) {
	switch ct.Primary() {
	case CodeTypeCSS:
		a.AnswerCSS = code
	case CodeTypeJS:
		a.AnswerJS = code
	case CodeTypePython:
		a.AnswerPython = code
	default:
		a.AnswerHTML = code
	}
}
