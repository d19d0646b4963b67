// Package metrics exposes Prometheus metrics for detector loading, frame
// detection and inspection records.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"screw-inspection/pkg/apperrors"
)

// InspectionMetrics holds every collector the service exports. All record
// methods are safe on a nil receiver so components can run without metrics.
type InspectionMetrics struct {
	DetectorLoadTotal    *prometheus.CounterVec
	DetectorLoadDuration *prometheus.HistogramVec
	DetectorReady        prometheus.Gauge

	FrameTotal    *prometheus.CounterVec
	FrameDuration *prometheus.HistogramVec
	FrameBoxes    prometheus.Histogram

	InspectionTotal *prometheus.CounterVec
	InspectionDelta prometheus.Histogram

	registry *prometheus.Registry
}

// NewInspectionMetrics creates the collectors and registers them on registry.
func NewInspectionMetrics(registry *prometheus.Registry) (*InspectionMetrics, error) {
	m := &InspectionMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register inspection metrics: %w", err)
	}
	return m, nil
}

func (m *InspectionMetrics) initMetrics() {
	m.DetectorLoadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_detector_load_total",
			Help: "Total number of detector load attempts",
		},
		[]string{"kind", "status"},
	)
	m.DetectorLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inspection_detector_load_duration_seconds",
			Help:    "Time taken to load a detector from its artifact",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"kind"},
	)
	m.DetectorReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inspection_detector_ready",
			Help: "1 when a detector for the active engine is loaded",
		},
	)
	m.FrameTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_frames_total",
			Help: "Total number of frames submitted for detection",
		},
		[]string{"status"},
	)
	m.FrameDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inspection_frame_duration_seconds",
			Help:    "Time taken to run detection on one frame",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"kind"},
	)
	m.FrameBoxes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inspection_frame_detections",
			Help:    "Number of detections returned per frame",
			Buckets: prometheus.LinearBuckets(0, 4, 12),
		},
	)
	m.InspectionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspection_records_total",
			Help: "Total number of persisted inspection records",
		},
		[]string{"status", "model"},
	)
	m.InspectionDelta = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "inspection_count_delta",
			Help:    "Expected minus detected screw count per inspection",
			Buckets: prometheus.LinearBuckets(-4, 1, 12),
		},
	)
}

// RecordDetectorLoad records one detector load attempt.
func (m *InspectionMetrics) RecordDetectorLoad(kind string, durationSeconds float64, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.DetectorLoadTotal.WithLabelValues(kind, status).Inc()
	m.DetectorLoadDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// SetDetectorReady flips the readiness gauge.
func (m *InspectionMetrics) SetDetectorReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.DetectorReady.Set(1)
		return
	}
	m.DetectorReady.Set(0)
}

// RecordFrame records one frame detection request.
func (m *InspectionMetrics) RecordFrame(kind string, durationSeconds float64, boxes int, err error) {
	if m == nil {
		return
	}
	m.FrameTotal.WithLabelValues(categorizeError(err)).Inc()
	if err != nil {
		return
	}
	m.FrameDuration.WithLabelValues(kind).Observe(durationSeconds)
	m.FrameBoxes.Observe(float64(boxes))
}

// RecordInspection records one persisted inspection.
func (m *InspectionMetrics) RecordInspection(status, model string, delta int) {
	if m == nil {
		return
	}
	m.InspectionTotal.WithLabelValues(status, model).Inc()
	m.InspectionDelta.Observe(float64(delta))
}

func categorizeError(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, apperrors.ErrDetectorUnavailable):
		return "detector_unavailable"
	default:
		return "error"
	}
}

// Describe implements the prometheus.Collector interface.
func (m *InspectionMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.DetectorLoadTotal.Describe(ch)
	m.DetectorLoadDuration.Describe(ch)
	m.DetectorReady.Describe(ch)
	m.FrameTotal.Describe(ch)
	m.FrameDuration.Describe(ch)
	m.FrameBoxes.Describe(ch)
	m.InspectionTotal.Describe(ch)
	m.InspectionDelta.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *InspectionMetrics) Collect(ch chan<- prometheus.Metric) {
	m.DetectorLoadTotal.Collect(ch)
	m.DetectorLoadDuration.Collect(ch)
	m.DetectorReady.Collect(ch)
	m.FrameTotal.Collect(ch)
	m.FrameDuration.Collect(ch)
	m.FrameBoxes.Collect(ch)
	m.InspectionTotal.Collect(ch)
	m.InspectionDelta.Collect(ch)
}

// Registry returns the registry the metrics were registered on.
func (m *InspectionMetrics) Registry() *prometheus.Registry {
	return m.registry
}
