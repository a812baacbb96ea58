package types

import (
	"time"

	"github.com/google/uuid"
)

type QuizAnswer struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID     `gorm:"type:uuid;not null;index" json:"question_id"`
	Question   *QuizQuestion `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuestionID;references:ID" json:"question,omitempty"`
	Text       string        `gorm:"column:text;not null" json:"text"`
	IsCorrect  bool          `gorm:"column:is_correct;not null;default:false" json:"is_correct"`
	CreatedAt  time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"not null" json:"updated_at"`
}

func (QuizAnswer) TableName() string { return "quiz_answer" }
