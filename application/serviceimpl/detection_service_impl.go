package serviceimpl

import (
	"context"
	"time"

	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/vision"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/metrics"
)

type DetectionServiceImpl struct {
	handle        services.DetectorHandle
	decoder       vision.Decoder
	params        services.DetectParams
	maxFrameBytes int
	metrics       *metrics.InspectionMetrics
}

func NewDetectionService(
	handle services.DetectorHandle,
	decoder vision.Decoder,
	params services.DetectParams,
	maxFrameBytes int,
	m *metrics.InspectionMetrics,
) *DetectionServiceImpl {
	return &DetectionServiceImpl{
		handle:        handle,
		decoder:       decoder,
		params:        params,
		maxFrameBytes: maxFrameBytes,
		metrics:       m,
	}
}

// Detect returns every detection at or above the configured floor. AC model
// thresholds are left to the caller.
func (s *DetectionServiceImpl) Detect(ctx context.Context, payload []byte) (*services.FrameResult, error) {
	data, err := vision.DecodePayload(payload)
	if err != nil {
		return nil, apperrors.InvalidInput("%v", err)
	}
	if s.maxFrameBytes > 0 && len(data) > s.maxFrameBytes {
		return nil, apperrors.InvalidInput("frame is %d bytes, limit is %d", len(data), s.maxFrameBytes)
	}

	frame, err := s.decoder.Decode(data)
	if err != nil {
		return nil, apperrors.InvalidInput("image could not be decoded")
	}

	active, err := s.handle.Get(ctx)
	if err != nil {
		return nil, err
	}
	defer active.Release()

	start := time.Now()
	raw, err := active.Detector.Detect(ctx, data, s.params)
	elapsed := time.Since(start)
	kind := string(active.Engine.Kind)
	if err != nil {
		s.metrics.RecordFrame(kind, elapsed.Seconds(), 0, err)
		logger.DetectionError("detect_failed", "Detector failed to process frame", err, map[string]interface{}{
			"engine_id": active.Engine.ID.String(),
		})
		s.handle.Evict(active)
		return nil, apperrors.DetectorUnavailable("inference failed: %v", err)
	}

	floored := raw[:0:0]
	for _, d := range raw {
		if d.Confidence >= s.params.ConfidenceFloor {
			floored = append(floored, d)
		}
	}
	kept := vision.NonMaxSuppression(floored, s.params.IoUThreshold, s.params.MaxDetections)

	detections := make([]services.Detection, 0, len(kept))
	for _, d := range kept {
		box, ok := vision.ClampBox(d.Box, frame.Width, frame.Height)
		if !ok {
			continue
		}
		detections = append(detections, services.Detection{
			Box:        box,
			Confidence: d.Confidence,
			ClassName:  d.ClassName,
		})
	}

	s.metrics.RecordFrame(kind, elapsed.Seconds(), len(detections), nil)
	return &services.FrameResult{
		Detections:  detections,
		EngineID:    active.Engine.ID,
		InferenceMs: float64(elapsed.Microseconds()) / 1000,
		Width:       frame.Width,
		Height:      frame.Height,
	}, nil
}
