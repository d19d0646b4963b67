package dto

import (
	"time"

	"github.com/google/uuid"
)

type EngineResponse struct {
	ID           uuid.UUID  `json:"id"`
	Kind         string     `json:"kind"`
	Version      string     `json:"version"`
	ArtifactName string     `json:"artifact_name"`
	SizeBytes    int64      `json:"size_bytes"`
	SizeMB       float64    `json:"size_mb"`
	SHA256       string     `json:"sha256,omitempty"`
	Description  string     `json:"description"`
	Active       bool       `json:"active"`
	CreatedByID  *uuid.UUID `json:"created_by_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type EngineListResponse struct {
	Engines        []EngineResponse `json:"engines"`
	SupportedKinds []KindSuffix     `json:"supported_kinds"`
}

type KindSuffix struct {
	Kind   string `json:"kind"`
	Suffix string `json:"suffix"`
}

// DetectorStatusResponse describes the cached detector for the active engine
type DetectorStatusResponse struct {
	State     string     `json:"state"`
	EngineID  *uuid.UUID `json:"engine_id,omitempty"`
	Kind      string     `json:"kind,omitempty"`
	Version   string     `json:"version,omitempty"`
	LoadedAt  *time.Time `json:"loaded_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}
