package dto

import "github.com/google/uuid"

// ProcessFrameRequest carries a base64 frame, optionally as a data URL.
// Browser clients send it as "frame".
type ProcessFrameRequest struct {
	Image string `json:"image"`
	Frame string `json:"frame"`
}

// Payload returns whichever of image or frame is set, preferring image
func (r ProcessFrameRequest) Payload() string {
	if r.Image != "" {
		return r.Image
	}
	return r.Frame
}

// DetectionResponse is one raw detection; the box is [x1, y1, x2, y2] in pixels
type DetectionResponse struct {
	Box        [4]int  `json:"box"`
	Confidence float64 `json:"confidence"`
	ClassName  string  `json:"class_name"`
}

type FrameResponse struct {
	Detections  []DetectionResponse `json:"detections"`
	Count       int                 `json:"count"`
	InferenceMs float64             `json:"inference_ms"`
	EngineID    uuid.UUID           `json:"engine_id"`
	Width       int                 `json:"width"`
	Height      int                 `json:"height"`
}
