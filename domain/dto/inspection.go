package dto

import (
	"time"

	"github.com/google/uuid"
)

// SaveInspectionRequest is the client's consolidated verdict for one cycle.
// Any delta, user or team sent by the client is ignored.
type SaveInspectionRequest struct {
	ModelName           string  `json:"model_name" validate:"required,max=100"`
	Status              string  `json:"status" validate:"required"`
	DetectedCount       *int    `json:"detected_count" validate:"required,min=0"`
	ExpectedCount       *int    `json:"expected_count" validate:"required,min=0"`
	Confidence          float64 `json:"confidence" validate:"gte=0,lte=1"`
	InferenceDurationMs float64 `json:"inference_duration_ms" validate:"gte=0"`
	ImageReference      string  `json:"image_reference" validate:"max=255"`
}

type SaveInspectionResponse struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
	Delta  int       `json:"delta"`
}

type InspectionResponse struct {
	ID                  uuid.UUID `json:"id"`
	ACModelID           uuid.UUID `json:"ac_model_id"`
	ModelName           string    `json:"model_name,omitempty"`
	UserID              uuid.UUID `json:"user_id"`
	Username            string    `json:"username,omitempty"`
	Team                string    `json:"team"`
	EngineID            uuid.UUID `json:"engine_id"`
	Status              string    `json:"status"`
	Confidence          float64   `json:"confidence"`
	DetectedCount       int       `json:"detected_count"`
	ExpectedCount       int       `json:"expected_count"`
	Delta               int       `json:"delta"`
	ImageReference      string    `json:"image_reference,omitempty"`
	InferenceDurationMs float64   `json:"inference_duration_ms"`
	Timestamp           time.Time `json:"timestamp"`
}

type InspectionListResponse struct {
	Inspections []InspectionResponse `json:"inspections"`
	Meta        PaginationMeta       `json:"meta"`
}

// InspectionEvent is broadcast to dashboards and the shop-floor bus after a
// record is committed
type InspectionEvent struct {
	Type          string    `json:"type"`
	ID            uuid.UUID `json:"id"`
	ModelName     string    `json:"model_name"`
	Team          string    `json:"team"`
	Username      string    `json:"username"`
	Status        string    `json:"status"`
	DetectedCount int       `json:"detected_count"`
	ExpectedCount int       `json:"expected_count"`
	Delta         int       `json:"delta"`
	Confidence    float64   `json:"confidence"`
	Timestamp     time.Time `json:"timestamp"`
}
