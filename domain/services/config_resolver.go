package services

import (
	"context"

	"github.com/google/uuid"
)

type ActiveConfig struct {
	ModelID             uuid.UUID
	ModelName           string
	TargetCount         int
	ConfidenceThreshold float64
	CycleTimeSeconds    int
	EngineID            uuid.UUID
}

// ConfigResolver maps the globally selected AC model to its parameters. It
// returns apperrors.ErrUnconfigured when nothing usable is selected.
type ConfigResolver interface {
	ResolveActive(ctx context.Context) (*ActiveConfig, error)
	Invalidate()
}
