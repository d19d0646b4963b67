package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateACModelRequest struct {
	Name                string   `json:"name" validate:"required,min=1,max=100"`
	Description         string   `json:"description" validate:"max=2000"`
	TargetCount         *int     `json:"target_count" validate:"omitempty,min=1,max=1000"`
	ConfidenceThreshold *float64 `json:"confidence_threshold" validate:"omitempty,gt=0,lte=1"`
	CycleTimeSeconds    *int     `json:"cycle_time_seconds" validate:"omitempty,min=1,max=3600"`
	EngineID            string   `json:"engine_id" validate:"required,uuid"`
}

type UpdateACModelRequest struct {
	Name                *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Description         *string  `json:"description" validate:"omitempty,max=2000"`
	TargetCount         *int     `json:"target_count" validate:"omitempty,min=1,max=1000"`
	ConfidenceThreshold *float64 `json:"confidence_threshold" validate:"omitempty,gt=0,lte=1"`
	CycleTimeSeconds    *int     `json:"cycle_time_seconds" validate:"omitempty,min=1,max=3600"`
	EngineID            *string  `json:"engine_id" validate:"omitempty,uuid"`
	Active              *bool    `json:"active"`
}

type ACModelResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	TargetCount         int             `json:"target_count"`
	ConfidenceThreshold float64         `json:"confidence_threshold"`
	CycleTimeSeconds    int             `json:"cycle_time_seconds"`
	EngineID            uuid.UUID       `json:"engine_id"`
	Engine              *EngineResponse `json:"engine,omitempty"`
	Active              bool            `json:"active"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
