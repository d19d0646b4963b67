package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"screw-inspection/domain/services"
)

func det(x1, y1, x2, y2, conf float64, class int) services.RawDetection {
	return services.RawDetection{
		Box:        services.BoundingBox{X1: x1, Y1: y1, X2: x2, Y2: y2},
		Confidence: conf,
		ClassID:    class,
	}
}

func TestIoU(t *testing.T) {
	a := services.BoundingBox{X1: 0, Y1: 0, X2: 10, Y2: 10}

	assert.InDelta(t, 1.0, IoU(a, a), 1e-9)
	assert.Zero(t, IoU(a, services.BoundingBox{X1: 20, Y1: 20, X2: 30, Y2: 30}))
	// 50 overlap / 150 union
	assert.InDelta(t, 1.0/3.0, IoU(a, services.BoundingBox{X1: 5, Y1: 0, X2: 15, Y2: 10}), 1e-9)
}

func TestNonMaxSuppression_DropsOverlapsWithinClass(t *testing.T) {
	dets := []services.RawDetection{
		det(0, 0, 10, 10, 0.6, 0),
		det(1, 1, 11, 11, 0.9, 0),
		det(50, 50, 60, 60, 0.3, 0),
	}

	kept := NonMaxSuppression(dets, 0.45, 0)

	assert.Len(t, kept, 2)
	assert.Equal(t, 0.9, kept[0].Confidence)
	assert.Equal(t, 0.3, kept[1].Confidence)
}

func TestNonMaxSuppression_KeepsOverlapsAcrossClasses(t *testing.T) {
	dets := []services.RawDetection{
		det(0, 0, 10, 10, 0.9, 0),
		det(0, 0, 10, 10, 0.8, 1),
	}

	assert.Len(t, NonMaxSuppression(dets, 0.45, 0), 2)
}

func TestNonMaxSuppression_RespectsMax(t *testing.T) {
	dets := []services.RawDetection{
		det(0, 0, 10, 10, 0.1, 0),
		det(20, 0, 30, 10, 0.2, 0),
		det(40, 0, 50, 10, 0.3, 0),
	}

	kept := NonMaxSuppression(dets, 0.45, 2)

	assert.Len(t, kept, 2)
	assert.Equal(t, 0.3, kept[0].Confidence)
}

func TestClampBox(t *testing.T) {
	box, ok := ClampBox(services.BoundingBox{X1: -5, Y1: 2.4, X2: 120.6, Y2: 50.5}, 100, 80)
	assert.True(t, ok)
	assert.Equal(t, [4]int{0, 2, 100, 51}, box)

	_, ok = ClampBox(services.BoundingBox{X1: 150, Y1: 0, X2: 200, Y2: 10}, 100, 80)
	assert.False(t, ok)
}
