package serviceimpl

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/domain/models"
	"screw-inspection/domain/services"
	"screw-inspection/infrastructure/vision"
	"screw-inspection/pkg/apperrors"
)

type stubHandle struct {
	active *services.ActiveDetector
	err    error
}

func (h *stubHandle) Get(context.Context) (*services.ActiveDetector, error) { return h.active, h.err }
func (h *stubHandle) Evict(*services.ActiveDetector)                        {}
func (h *stubHandle) Invalidate()                                           {}
func (h *stubHandle) Status() services.HandleStatus                         { return services.HandleStatus{} }

var testParams = services.DetectParams{ConfidenceFloor: 0.05, IoUThreshold: 0.45, ImageSize: 640, MaxDetections: 300}

func pngFrame(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func rawDet(x1, y1, x2, y2, conf float64) services.RawDetection {
	return services.RawDetection{
		Box:        services.BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2},
		Confidence: conf,
		ClassName:  "screw",
	}
}

func newDetectionWith(detector *fakeDetector, err error) *DetectionServiceImpl {
	handle := &stubHandle{err: err}
	if detector != nil {
		handle.active = &services.ActiveDetector{
			Engine:   models.InferenceEngine{ID: detector.engineID, Kind: models.EngineYOLOv8},
			Detector: detector,
		}
	}
	return NewDetectionService(handle, vision.NewDecoder(), testParams, 1<<20, nil)
}

func TestDetectionService_ReturnsRawDetectionsBelowModelThreshold(t *testing.T) {
	detector := &fakeDetector{
		engineID: uuid.New(),
		dets: []services.RawDetection{
			rawDet(10, 10, 20, 20, 0.2),
			rawDet(40, 40, 50, 50, 0.9),
			rawDet(60, 60, 70, 70, 0.01),
		},
	}
	svc := newDetectionWith(detector, nil)

	result, err := svc.Detect(context.Background(), pngFrame(t, 100, 80))
	require.NoError(t, err)

	require.Len(t, result.Detections, 2, "only the internal floor filters")
	assert.Equal(t, 0.9, result.Detections[0].Confidence)
	assert.Equal(t, 0.2, result.Detections[1].Confidence)
	assert.Equal(t, [4]int{10, 10, 20, 20}, result.Detections[1].Box)
	assert.Equal(t, "screw", result.Detections[0].ClassName)
	assert.Equal(t, detector.engineID, result.EngineID)
	assert.Equal(t, 100, result.Width)
	assert.Equal(t, 80, result.Height)
}

func TestDetectionService_AcceptsBase64DataURL(t *testing.T) {
	detector := &fakeDetector{engineID: uuid.New()}
	svc := newDetectionWith(detector, nil)

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngFrame(t, 8, 8))
	result, err := svc.Detect(context.Background(), []byte(payload))

	require.NoError(t, err)
	assert.Empty(t, result.Detections)
	assert.NotNil(t, result.Detections)
}

func TestDetectionService_SuppressesAndClamps(t *testing.T) {
	detector := &fakeDetector{
		engineID: uuid.New(),
		dets: []services.RawDetection{
			rawDet(0, 0, 10, 10, 0.8),
			rawDet(1, 1, 11, 11, 0.7),
			rawDet(90, 70, 130, 95, 0.6),
		},
	}
	svc := newDetectionWith(detector, nil)

	result, err := svc.Detect(context.Background(), pngFrame(t, 100, 80))
	require.NoError(t, err)

	require.Len(t, result.Detections, 2)
	assert.Equal(t, [4]int{90, 70, 100, 80}, result.Detections[1].Box)
}

func TestDetectionService_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := newDetectionWith(&fakeDetector{}, nil).Detect(ctx, []byte("%%%not-an-image%%%"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = newDetectionWith(&fakeDetector{}, nil).Detect(ctx, []byte{0xFF, 0xD8, 0xFF, 0x00})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = newDetectionWith(nil, services.ErrNoActiveEngine).Detect(ctx, pngFrame(t, 4, 4))
	assert.ErrorIs(t, err, apperrors.ErrDetectorUnavailable)

	_, err = newDetectionWith(&fakeDetector{err: errors.New("sidecar down")}, nil).Detect(ctx, pngFrame(t, 4, 4))
	assert.ErrorIs(t, err, apperrors.ErrDetectorUnavailable)
}

func TestDetectionService_RejectsOversizedFrame(t *testing.T) {
	svc := NewDetectionService(&stubHandle{}, vision.NewDecoder(), testParams, 16, nil)

	_, err := svc.Detect(context.Background(), pngFrame(t, 64, 64))

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDetectionService_ReloadsAfterDetectorStopsAnswering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := actorFor(env.seedUser(t, "admin", "QA", models.RoleAdmin))

	engine := env.register(t, admin, "yolov8", "1.0")
	_, err := env.engineSvc.Activate(ctx, admin, engine.ID)
	require.NoError(t, err)

	svc := NewDetectionService(env.handle, vision.NewDecoder(), testParams, 1<<20, nil)
	frame := pngFrame(t, 32, 32)

	_, err = svc.Detect(ctx, frame)
	require.NoError(t, err)
	require.Equal(t, 1, env.loader.Calls())

	// the sidecar restarted and forgot the model
	env.loader.loaded[0].err = errors.New("inference API returned status 404: unknown model")

	_, err = svc.Detect(ctx, frame)
	assert.ErrorIs(t, err, apperrors.ErrDetectorUnavailable)
	assert.True(t, env.loader.loaded[0].closed.Load())
	assert.Equal(t, services.HandleNotLoaded, env.handle.Status().State)

	result, err := svc.Detect(ctx, frame)
	require.NoError(t, err)
	assert.Equal(t, engine.ID, result.EngineID)
	assert.Equal(t, 2, env.loader.Calls())
	assert.Equal(t, services.HandleReady, env.handle.Status().State)
}
