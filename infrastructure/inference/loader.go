package inference

import (
	"context"
	"fmt"
	"time"

	"screw-inspection/domain/models"
	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/storage"
	"screw-inspection/pkg/logger"
)

// SidecarLoader loads engines into the sidecar. The sidecar mounts the same
// uploads directory, so only the bare artifact name crosses the wire. Each
// instance loads under its own model id so unloading never reaches a peer.
type SidecarLoader struct {
	client     *Client
	artifacts  storage.ArtifactStorage
	instanceID string
}

func NewSidecarLoader(client *Client, artifacts storage.ArtifactStorage, instanceID string) *SidecarLoader {
	return &SidecarLoader{client: client, artifacts: artifacts, instanceID: instanceID}
}

// ModelID names engine's copy in the sidecar for this instance
func (l *SidecarLoader) ModelID(engine *models.InferenceEngine) string {
	if l.instanceID == "" {
		return engine.ID.String()
	}
	return engine.ID.String() + "-" + l.instanceID
}

func (l *SidecarLoader) Load(ctx context.Context, engine *models.InferenceEngine) (services.Detector, error) {
	if !l.artifacts.Exists(engine.ArtifactName) {
		return nil, fmt.Errorf("artifact %s is missing from uploads", engine.ArtifactName)
	}

	modelID := l.ModelID(engine)
	start := time.Now()
	resp, err := l.client.LoadModel(ctx, LoadRequest{
		ModelID:  modelID,
		Kind:     string(engine.Kind),
		Artifact: engine.ArtifactName,
		SHA256:   engine.SHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", engine.Kind, engine.Version, err)
	}

	logger.Engine("sidecar_loaded", "Engine loaded in sidecar", map[string]interface{}{
		"engine_id": engine.ID.String(),
		"model_id":  modelID,
		"kind":      engine.Kind,
		"classes":   len(resp.Classes),
		"duration":  time.Since(start).String(),
	})
	return &remoteDetector{client: l.client, modelID: modelID}, nil
}

type remoteDetector struct {
	client  *Client
	modelID string
}

func (d *remoteDetector) Detect(ctx context.Context, frame []byte, params services.DetectParams) ([]services.RawDetection, error) {
	resp, err := d.client.Detect(ctx, d.modelID, frame, DetectOptions{
		Confidence:    params.ConfidenceFloor,
		IoU:           params.IoUThreshold,
		ImageSize:     params.ImageSize,
		MaxDetections: params.MaxDetections,
	})
	if err != nil {
		return nil, err
	}

	out := make([]services.RawDetection, 0, len(resp.Detections))
	for _, p := range resp.Detections {
		out = append(out, services.RawDetection{
			Box:        services.BoundingBox{X1: p.Box[0], Y1: p.Box[1], X2: p.Box[2], Y2: p.Box[3]},
			Confidence: p.Confidence,
			ClassID:    p.ClassID,
			ClassName:  p.ClassName,
		})
	}
	return out, nil
}

func (d *remoteDetector) Close(ctx context.Context) error {
	return d.client.Unload(ctx, d.modelID)
}
