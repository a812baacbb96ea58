package types

import (
	"time"

	"github.com/google/uuid"
)

type Unit struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SkillPathID uuid.UUID  `gorm:"type:uuid;not null;index" json:"skill_path_id"`
	SkillPath   *SkillPath `gorm:"constraint:OnDelete:CASCADE;foreignKey:SkillPathID;references:ID" json:"skill_path,omitempty"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description" json:"description"`
	Position    int        `gorm:"column:position;not null" json:"position"`
	Modules     []*Module  `gorm:"foreignKey:UnitID;references:ID" json:"modules,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Unit) TableName() string { return "unit" }
