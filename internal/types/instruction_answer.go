package types

import (
	"time"

	"github.com/google/uuid"
)

// InstructionAnswer holds the solution code for one instruction. At most one
// of the four code fields is populated per generation, matching the owning
// exercise's code type.
type InstructionAnswer struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	InstructionID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"instruction_id"`
	Instruction   *Instruction `gorm:"constraint:OnDelete:CASCADE;foreignKey:InstructionID;references:ID" json:"instruction,omitempty"`
	AnswerHTML    string       `gorm:"column:answer_html" json:"answer_html"`
	AnswerCSS     string       `gorm:"column:answer_css" json:"answer_css"`
	AnswerJS      string       `gorm:"column:answer_js" json:"answer_js"`
	AnswerPython  string       `gorm:"column:answer_python" json:"answer_python"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (InstructionAnswer) TableName() string { return "instruction_answer" }

// SetCode writes code into the field matching the given code type.
func (a *InstructionAnswer) SetCode(ct CodeType, code string) {
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
