package services

import (
	"context"
	"sync"
	"time"

	"screw-inspection/domain/models"
)

// BoundingBox is in source-frame pixels
type BoundingBox struct {
	X1, Y1, X2, Y2 float64
}

func (b BoundingBox) Area() float64 {
	w, h := b.X2-b.X1, b.Y2-b.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// RawDetection is one object reported by a detector backend
type RawDetection struct {
	Box        BoundingBox
	Confidence float64
	ClassID    int
	ClassName  string
}

// DetectParams are fixed by configuration, never by the caller
type DetectParams struct {
	ConfidenceFloor float64
	IoUThreshold    float64
	ImageSize       int
	MaxDetections   int
}

// Detector is a loaded engine. Implementations must be safe for concurrent use.
type Detector interface {
	Detect(ctx context.Context, frame []byte, params DetectParams) ([]RawDetection, error)
	Close(ctx context.Context) error
}

// DetectorLoader instantiates a detector bound to an engine's artifact
type DetectorLoader interface {
	Load(ctx context.Context, engine *models.InferenceEngine) (Detector, error)
}

type HandleState string

const (
	HandleNotLoaded  HandleState = "not_loaded"
	HandleReady      HandleState = "ready"
	HandleNoEngine   HandleState = "no_engine"
	HandleLoadFailed HandleState = "load_failed"
)

// ActiveDetector pairs a loaded detector with the engine row it was built from.
// Holders call Release when done; the detector is not closed while held.
type ActiveDetector struct {
	Engine   models.InferenceEngine
	Detector Detector

	release func()
}

func NewActiveDetector(engine models.InferenceEngine, detector Detector, release func()) *ActiveDetector {
	a := &ActiveDetector{Engine: engine, Detector: detector}
	if release != nil {
		a.release = sync.OnceFunc(release)
	}
	return a
}

// Release is safe to call more than once and on a nil receiver
func (a *ActiveDetector) Release() {
	if a == nil || a.release == nil {
		return
	}
	a.release()
}

type HandleStatus struct {
	State     HandleState
	Engine    *models.InferenceEngine
	LoadedAt  *time.Time
	LastError string
}

// DetectorHandle is the process-wide cache of the active engine's detector.
// Get reconciles with the registry on every call; Invalidate drops the cache
// and must be called after any engine mutation commits. Evict drops the
// cache only while it still serves the given detector, so a detector that
// stopped answering is reloaded by the next Get.
type DetectorHandle interface {
	Get(ctx context.Context) (*ActiveDetector, error)
	Evict(active *ActiveDetector)
	Invalidate()
	Status() HandleStatus
}
