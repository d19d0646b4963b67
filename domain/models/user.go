package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleOperator   Role = "operator"
)

const DefaultTeam = "Default Team"

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleOperator:
		return true
	}
	return false
}

type User struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid"`
	Username     string    `gorm:"uniqueIndex;size:80;not null"`
	Email        string    `gorm:"uniqueIndex;size:120;not null"`
	PasswordHash string    `gorm:"not null"`
	Team         string    `gorm:"size:100;not null;index"`
	Role         Role      `gorm:"type:varchar(30);not null"`
	IsActive     bool      `gorm:"not null"`
	LastLogin    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
