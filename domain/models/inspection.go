package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InspectionStatus string

const (
	InspectionPass    InspectionStatus = "PASS"
	InspectionFail    InspectionStatus = "FAIL"
	InspectionPending InspectionStatus = "PENDING"
)

// ParseInspectionStatus accepts any letter case.
func ParseInspectionStatus(s string) (InspectionStatus, bool) {
	status := InspectionStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case InspectionPass, InspectionFail, InspectionPending:
		return status, true
	}
	return "", false
}

// InspectionRecord is one consolidated inspection verdict. Team is copied
// from the session at write time and never recomputed. Rows are append-only.
type InspectionRecord struct {
	ID                  uuid.UUID        `gorm:"primaryKey;type:uuid"`
	ACModelID           uuid.UUID        `gorm:"type:uuid;not null;index"`
	UserID              uuid.UUID        `gorm:"type:uuid;not null;index"`
	Team                string           `gorm:"size:100;not null;index"`
	EngineID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status              InspectionStatus `gorm:"type:varchar(10);not null;index"`
	Confidence          float64          `gorm:"not null"`
	DetectedCount       int              `gorm:"not null"`
	ExpectedCount       int              `gorm:"not null"`
	Delta               int              `gorm:"not null"`
	ImageReference      string           `gorm:"size:255"`
	InferenceDurationMs float64          `gorm:"not null"`
	CreatedAt           time.Time        `gorm:"index"`

	ACModel *ACModel         `gorm:"foreignKey:ACModelID"`
	User    *User            `gorm:"foreignKey:UserID"`
	Engine  *InferenceEngine `gorm:"foreignKey:EngineID"`
}

func (InspectionRecord) TableName() string {
	return "inspection_records"
}

func (r *InspectionRecord) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

func (r *InspectionRecord) BeforeUpdate(tx *gorm.DB) error { return rejectMutation(tx) }
func (r *InspectionRecord) BeforeDelete(tx *gorm.DB) error { return rejectMutation(tx) }
