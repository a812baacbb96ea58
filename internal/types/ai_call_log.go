package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AICallLog records one round trip to the generation service.
type AICallLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Kind       string         `gorm:"column:kind;not null;index" json:"kind"`
	Model      string         `gorm:"column:model" json:"model"`
	DurationMS int64          `gorm:"column:duration_ms" json:"duration_ms"`
	Status     string         `gorm:"column:status;not null" json:"status"`
	Error      string         `gorm:"column:error" json:"error"`
	Metadata   datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (AICallLog) TableName() string { return "ai_call_log" }
