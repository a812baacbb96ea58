package types

import (
	"time"

	"github.com/google/uuid"
)

type Instruction struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	ExerciseID uuid.UUID          `gorm:"type:uuid;not null;index" json:"exercise_id"`
	Exercise   *Exercise          `gorm:"constraint:OnDelete:CASCADE;foreignKey:ExerciseID;references:ID" json:"exercise,omitempty"`
	Title      string             `gorm:"column:title;not null" json:"title"`
	Content    string             `gorm:"column:content" json:"content"`
	Position   int                `gorm:"column:position;not null" json:"position"`
	Answer     *InstructionAnswer `gorm:"foreignKey:InstructionID;references:ID" json:"answer,omitempty"`
	CreatedAt  time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time          `gorm:"not null" json:"updated_at"`
}

func (Instruction) TableName() string { return "instruction" }
