package types

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID    *uuid.UUID     `gorm:"type:uuid;index" json:"module_id,omitempty"`
	Module      *Module        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty"`
	CreatorID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"creator_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Brief       string         `gorm:"column:brief" json:"brief"`
	Position    int            `gorm:"column:position;not null" json:"position"`
	Published   bool           `gorm:"column:published;not null;default:false" json:"published"`
	Tasks       []*ProjectTask `gorm:"foreignKey:ProjectID;references:ID" json:"tasks,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Project) TableName() string { return "project" }
