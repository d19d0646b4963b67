package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screw-inspection/pkg/apperrors"
)

func TestRecordFrameCategorizesErrors(t *testing.T) {
	m, err := NewInspectionMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	m.RecordFrame("yolov8", 0.02, 24, nil)
	m.RecordFrame("yolov8", 0, 0, apperrors.InvalidInput("bad base64"))
	m.RecordFrame("yolov8", 0, 0, apperrors.DetectorUnavailable("no engine"))
	m.RecordFrame("yolov8", 0, 0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FrameTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FrameTotal.WithLabelValues("invalid_input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FrameTotal.WithLabelValues("detector_unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FrameTotal.WithLabelValues("error")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *InspectionMetrics
	assert.NotPanics(t, func() {
		m.RecordDetectorLoad("yolov8", 1, nil)
		m.SetDetectorReady(true)
		m.RecordFrame("yolov8", 1, 1, nil)
		m.RecordInspection("PASS", "UnitX", 0)
	})
}

func TestDoubleRegistrationFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewInspectionMetrics(registry)
	require.NoError(t, err)
	_, err = NewInspectionMetrics(registry)
	assert.Error(t, err)
}
