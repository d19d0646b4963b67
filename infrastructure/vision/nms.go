package vision

import (
	"math"
	"sort"

	"screw-inspection/domain/services"
)

// IoU is the intersection over union of two boxes.
func IoU(a, b services.BoundingBox) float64 {
	inter := services.BoundingBox{
		X1: math.Max(a.X1, b.X1),
		Y1: math.Max(a.Y1, b.Y1),
		X2: math.Min(a.X2, b.X2),
		Y2: math.Min(a.Y2, b.Y2),
	}.Area()
	if inter == 0 {
		return 0
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// NonMaxSuppression keeps the highest-confidence box of each overlapping
// cluster, per class. The result is sorted by confidence, descending, and
// holds at most max detections when max > 0.
func NonMaxSuppression(dets []services.RawDetection, iouThreshold float64, max int) []services.RawDetection {
	sorted := make([]services.RawDetection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]services.RawDetection, 0, len(sorted))
	suppressed := make([]bool, len(sorted))
	for i := range sorted {
		if suppressed[i] {
			continue
		}
		kept = append(kept, sorted[i])
		if max > 0 && len(kept) == max {
			break
		}
		for j := i + 1; j < len(sorted); j++ {
			if suppressed[j] || sorted[j].ClassID != sorted[i].ClassID {
				continue
			}
			if IoU(sorted[i].Box, sorted[j].Box) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

// ClampBox limits b to a width x height frame and rounds to whole pixels.
// ok is false when nothing of the box is left inside the frame.
func ClampBox(b services.BoundingBox, width, height int) ([4]int, bool) {
	clamp := func(v float64, hi int) int {
		return int(math.Round(math.Min(math.Max(v, 0), float64(hi))))
	}
	out := [4]int{clamp(b.X1, width), clamp(b.Y1, height), clamp(b.X2, width), clamp(b.Y2, height)}
	return out, out[2] > out[0] && out[3] > out[1]
}
