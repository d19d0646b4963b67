package dto

import (
	"time"

	"github.com/google/uuid"
)

// UpdateSettingsRequest changes the global settings. ClearActiveModel wins
// over ActiveModelID.
type UpdateSettingsRequest struct {
	ActiveModelID           *string `json:"active_model_id" validate:"omitempty,uuid"`
	ClearActiveModel        bool    `json:"clear_active_model"`
	AllowPublicRegistration *bool   `json:"allow_public_registration"`
}

type SettingsResponse struct {
	ActiveModelID           *uuid.UUID       `json:"active_model_id"`
	ActiveModel             *ACModelResponse `json:"active_model,omitempty"`
	AllowPublicRegistration bool             `json:"allow_public_registration"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

// ActiveConfigResponse is what the inspection client needs to run a cycle
type ActiveConfigResponse struct {
	ModelID             uuid.UUID `json:"model_id"`
	ModelName           string    `json:"model_name"`
	TargetCount         int       `json:"target_count"`
	ConfidenceThreshold float64   `json:"confidence_threshold"`
	CycleTimeSeconds    int       `json:"cycle_time_seconds"`
	EngineID            uuid.UUID `json:"engine_id"`
}
