package models

import (
	"time"

	"github.com/google/uuid"
)

// GlobalSettingsID is the primary key of the only settings row.
const GlobalSettingsID uint = 1

type GlobalSettings struct {
	ID                      uint       `gorm:"primaryKey;autoIncrement:false"`
	ActiveModelID           *uuid.UUID `gorm:"type:uuid"`
	AllowPublicRegistration bool       `gorm:"not null"`
	UpdatedByID             *uuid.UUID `gorm:"type:uuid"`

	UpdatedAt time.Time
}

func (GlobalSettings) TableName() string {
	return "global_settings"
}
