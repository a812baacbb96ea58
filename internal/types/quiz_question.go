package types

import (
	"time"

	"github.com/google/uuid"
)

// QuizQuestion always carries exactly 4 answers at creation, at least one of
// them marked correct.
type QuizQuestion struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz        *Quiz         `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
	Text        string        `gorm:"column:text;not null" json:"text"`
	Explanation string        `gorm:"column:explanation" json:"explanation"`
	Position    int           `gorm:"column:position;not null" json:"position"`
	Answers     []*QuizAnswer `gorm:"foreignKey:QuestionID;references:ID" json:"answers,omitempty"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }
