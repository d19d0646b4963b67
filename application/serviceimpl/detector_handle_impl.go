package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"screw-inspection/domain/models"
	"screw-inspection/domain/repositories"
	"screw-inspection/domain/services"
	"screw-inspection/pkg/apperrors"
	"screw-inspection/pkg/logger"
	"screw-inspection/pkg/metrics"
)

// detectorEntry is one cache generation. key is the engine's CacheKey, or
// "" for the cached "no active engine" state. refs and retired are guarded
// by the handle's mutex; a retired detector is closed once refs drops to 0.
type detectorEntry struct {
	key      string
	engine   *models.InferenceEngine
	detector services.Detector
	loadErr  error
	loadedAt time.Time
	retryAt  time.Time

	refs    int
	retired bool
}

// settled reports whether the entry answers Get without a new load
func (e *detectorEntry) settled(now time.Time) bool {
	switch {
	case e.detector != nil:
		return !e.retired
	case e.key == "":
		return true
	}
	return now.Before(e.retryAt)
}

// maxGetAttempts bounds how often Get chases an entry retired under it
const maxGetAttempts = 3

type DetectorHandleImpl struct {
	engines repositories.InferenceEngineRepository
	loader  services.DetectorLoader
	metrics *metrics.InspectionMetrics
	backoff time.Duration
	now     func() time.Time

	mu         sync.RWMutex
	entry      *detectorEntry
	generation uint64
	loads      singleflight.Group
}

// NewDetectorHandle builds the handle. Failed loads are cached for backoff
// before the next request retries.
func NewDetectorHandle(
	engines repositories.InferenceEngineRepository,
	loader services.DetectorLoader,
	m *metrics.InspectionMetrics,
	backoff time.Duration,
) *DetectorHandleImpl {
	return &DetectorHandleImpl{
		engines: engines,
		loader:  loader,
		metrics: m,
		backoff: backoff,
		now:     time.Now,
	}
}

// Get returns the detector for the engine the registry currently marks
// active. The cached entry is only reused when its key matches the registry.
// The caller must Release the result.
func (h *DetectorHandleImpl) Get(ctx context.Context) (*services.ActiveDetector, error) {
	for attempt := 0; attempt < maxGetAttempts; attempt++ {
		res, err, retry := h.get(ctx)
		if !retry {
			return res, err
		}
	}
	return nil, apperrors.DetectorUnavailable("the active engine changed while its detector was loading")
}

func (h *DetectorHandleImpl) get(ctx context.Context) (*services.ActiveDetector, error, bool) {
	active, err := h.engines.GetActive(ctx)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDetectorUnavailable, err), false
	}
	if err != nil {
		active = nil
	}

	key := ""
	if active != nil {
		key = active.CacheKey()
	}

	h.mu.RLock()
	entry, gen := h.entry, h.generation
	h.mu.RUnlock()

	if entry != nil && entry.key == key {
		if res, err, ok := h.use(entry); ok {
			return res, err, false
		}
	}

	if active == nil {
		h.store(gen, &detectorEntry{})
		return nil, services.ErrNoActiveEngine, false
	}

	v, _, _ := h.loads.Do(key, func() (interface{}, error) {
		// a flight that finished after our read may already have stored it
		h.mu.RLock()
		cur := h.entry
		settled := cur != nil && cur.key == key && cur.settled(h.now())
		h.mu.RUnlock()
		if settled {
			return cur, nil
		}
		return h.load(ctx, active, gen), nil
	})
	entry = v.(*detectorEntry)
	if res, err, ok := h.use(entry); ok {
		return res, err, false
	}
	if entry.detector != nil {
		// retired before this caller could pin it
		return nil, nil, true
	}
	// a failed load whose backoff elapsed while waiting on the flight
	return nil, entry.loadErr, false
}

// use answers from entry, pinning its detector for the caller. ok is false
// when the entry needs a new load.
func (h *DetectorHandleImpl) use(entry *detectorEntry) (*services.ActiveDetector, error, bool) {
	if entry.detector != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
		if entry.retired {
			return nil, nil, false
		}
		entry.refs++
		return services.NewActiveDetector(*entry.engine, entry.detector, func() { h.release(entry) }), nil, true
	}
	if entry.key == "" {
		return nil, services.ErrNoActiveEngine, true
	}
	if h.now().Before(entry.retryAt) {
		return nil, entry.loadErr, true
	}
	return nil, nil, false
}

func (h *DetectorHandleImpl) release(entry *detectorEntry) {
	h.mu.Lock()
	entry.refs--
	closeNow := entry.retired && entry.refs == 0
	h.mu.Unlock()

	if closeNow {
		h.closeDetector(entry)
	}
}

// retireLocked marks entry as replaced and reports whether its detector can
// be closed right away. h.mu must be held.
func retireLocked(entry *detectorEntry) bool {
	if entry == nil || entry.detector == nil || entry.retired {
		return false
	}
	entry.retired = true
	return entry.refs == 0
}

func (h *DetectorHandleImpl) load(ctx context.Context, engine *models.InferenceEngine, gen uint64) *detectorEntry {
	start := h.now()
	detector, err := h.loader.Load(ctx, engine)
	elapsed := h.now().Sub(start)
	h.metrics.RecordDetectorLoad(string(engine.Kind), elapsed.Seconds(), err)

	entry := &detectorEntry{key: engine.CacheKey(), engine: engine}
	if err != nil {
		entry.loadErr = fmt.Errorf("%w: %s: %v", services.ErrEngineLoadFailed, engine.ArtifactName, err)
		entry.retryAt = h.now().Add(h.backoff)
		logger.EngineError("detector_load_failed", "Failed to load detector for active engine", err, map[string]interface{}{
			"engine_id": engine.ID.String(),
			"artifact":  engine.ArtifactName,
		})
	} else {
		entry.detector = detector
		entry.loadedAt = h.now()
		logger.Engine("detector_loaded", "Detector loaded for active engine", map[string]interface{}{
			"engine_id": engine.ID.String(),
			"kind":      engine.Kind,
			"version":   engine.Version,
			"duration":  elapsed.String(),
		})
	}

	h.store(gen, entry)
	return entry
}

// store swaps in entry unless an Invalidate happened since gen was read.
// A discarded detector is closed and its waiters go back to the registry.
func (h *DetectorHandleImpl) store(gen uint64, entry *detectorEntry) {
	h.mu.Lock()
	if h.generation != gen {
		closeStale := retireLocked(entry)
		h.mu.Unlock()
		logger.Debug(logger.CategoryEngine, "detector_entry_discarded", "Cache was invalidated during load", nil)
		if closeStale {
			h.closeDetector(entry)
		}
		return
	}
	old := h.entry
	h.entry = entry
	h.generation++
	closeOld := retireLocked(old)
	h.mu.Unlock()

	h.metrics.SetDetectorReady(entry.detector != nil)
	if closeOld {
		h.closeDetector(old)
	}
}

// Invalidate drops the cached entry. The next Get reloads from the registry;
// requests still holding the old detector finish before it is closed.
func (h *DetectorHandleImpl) Invalidate() {
	h.mu.Lock()
	old := h.entry
	h.entry = nil
	h.generation++
	closeOld := retireLocked(old)
	h.mu.Unlock()

	h.metrics.SetDetectorReady(false)
	if closeOld {
		h.closeDetector(old)
	}
	logger.Engine("detector_invalidated", "Detector cache invalidated", nil)
}

func (h *DetectorHandleImpl) Evict(active *services.ActiveDetector) {
	if active == nil {
		return
	}

	h.mu.Lock()
	old := h.entry
	if old == nil || old.detector == nil || old.detector != active.Detector {
		h.mu.Unlock()
		return
	}
	h.entry = nil
	h.generation++
	closeOld := retireLocked(old)
	h.mu.Unlock()

	h.metrics.SetDetectorReady(false)
	if closeOld {
		h.closeDetector(old)
	}
	logger.Warn(logger.CategoryEngine, "detector_evicted", "Detector stopped answering, next request reloads it", map[string]interface{}{
		"engine_id": active.Engine.ID.String(),
	})
}

func (h *DetectorHandleImpl) closeDetector(entry *detectorEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := entry.detector.Close(ctx); err != nil {
		logger.EngineError("detector_close_failed", "Failed to release detector", err, map[string]interface{}{
			"engine_id": entry.engine.ID.String(),
		})
	}
}

func (h *DetectorHandleImpl) Status() services.HandleStatus {
	h.mu.RLock()
	entry := h.entry
	h.mu.RUnlock()

	if entry == nil {
		return services.HandleStatus{State: services.HandleNotLoaded}
	}

	status := services.HandleStatus{Engine: entry.engine}
	switch {
	case entry.detector != nil:
		status.State = services.HandleReady
		loadedAt := entry.loadedAt
		status.LoadedAt = &loadedAt
	case entry.key == "":
		status.State = services.HandleNoEngine
	default:
		status.State = services.HandleLoadFailed
		status.LastError = entry.loadErr.Error()
	}
	return status
}
