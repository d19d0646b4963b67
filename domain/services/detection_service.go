package services

import (
	"context"

	"github.com/google/uuid"
)

type Detection struct {
	Box        [4]int
	Confidence float64
	ClassName  string
}

type FrameResult struct {
	Detections  []Detection
	EngineID    uuid.UUID
	InferenceMs float64
	Width       int
	Height      int
}

// DetectionService runs one frame through the active detector. It never
// applies an AC model's confidence threshold.
type DetectionService interface {
	Detect(ctx context.Context, payload []byte) (*FrameResult, error)
}
