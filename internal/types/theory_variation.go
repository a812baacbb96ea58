package types

import (
	"time"

	"github.com/google/uuid"
)

// TheoryVariation is an alternate prose rendering of a lesson's theory.
// At most one variation per lesson is active at any time.
type TheoryVariation struct {
	ID              uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"lesson_id"`
	Lesson          *Lesson     `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	Title           string      `gorm:"column:title;not null" json:"title"`
	Content         string      `gorm:"column:content" json:"content"`
	Style           TheoryStyle `gorm:"column:style;not null" json:"style"`
	IsActive        bool        `gorm:"column:is_active;not null;default:false" json:"is_active"`
	VariationNumber int         `gorm:"column:variation_number;not null" json:"variation_number"`
	CreatedAt       time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time   `gorm:"not null" json:"updated_at"`
}

func (TheoryVariation) TableName() string { return "theory_variation" }
