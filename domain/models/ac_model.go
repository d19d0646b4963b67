package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultTargetCount         = 24
	DefaultConfidenceThreshold = 0.5
	DefaultCycleTimeSeconds    = 20
)

// ACModel is an inspection profile for one air-conditioner product line.
// Active=false is a soft delete.
type ACModel struct {
	ID                  uuid.UUID  `gorm:"primaryKey;type:uuid"`
	Name                string     `gorm:"uniqueIndex;size:100;not null"`
	Description         string     `gorm:"type:text"`
	TargetCount         int        `gorm:"not null"`
	ConfidenceThreshold float64    `gorm:"not null"`
	CycleTimeSeconds    int        `gorm:"not null"`
	EngineID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Active              bool       `gorm:"not null;index"`
	CreatedByID         *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Engine *InferenceEngine `gorm:"foreignKey:EngineID"`
}

func (ACModel) TableName() string {
	return "ac_models"
}

func (m *ACModel) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}
