package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditCreate     AuditAction = "CREATE"
	AuditUpdate     AuditAction = "UPDATE"
	AuditDeactivate AuditAction = "DEACTIVATE"
	AuditDelete     AuditAction = "DELETE"
	AuditUpload     AuditAction = "UPLOAD"
	AuditActivate   AuditAction = "ACTIVATE"
)

// AuditLog stores administrative mutations with before/after snapshots.
type AuditLog struct {
	ID            uuid.UUID   `gorm:"primaryKey;type:uuid"`
	ActorID       *uuid.UUID  `gorm:"type:uuid;index"`
	Action        AuditAction `gorm:"type:varchar(20);not null;index"`
	AffectedTable string      `gorm:"size:50;not null;index"`
	RecordID      string      `gorm:"size:64;index"`
	Description   string      `gorm:"type:text"`
	Before        datatypes.JSON
	After         datatypes.JSON
	IPAddress     string    `gorm:"size:45"`
	CreatedAt     time.Time `gorm:"index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error { return rejectMutation(tx) }
func (a *AuditLog) BeforeDelete(tx *gorm.DB) error { return rejectMutation(tx) }
