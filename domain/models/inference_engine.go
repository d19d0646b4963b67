package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EngineKind is a detector family. Each family ships its weights in one
// container format.
type EngineKind string

const (
	EngineYOLOv5       EngineKind = "yolov5"
	EngineYOLOv8       EngineKind = "yolov8"
	EngineYOLOv11      EngineKind = "yolov11"
	EngineRTDETR       EngineKind = "rtdetr"
	EngineEfficientDet EngineKind = "efficientdet"
	EngineMaskRCNN     EngineKind = "maskrcnn"
	EngineDarknet      EngineKind = "darknet"
	EngineONNX         EngineKind = "onnx"
)

var engineArtifactSuffix = map[EngineKind]string{
	EngineYOLOv5:       ".pt",
	EngineYOLOv8:       ".pt",
	EngineYOLOv11:      ".pt",
	EngineRTDETR:       ".pt",
	EngineEfficientDet: ".pth",
	EngineMaskRCNN:     ".pth",
	EngineDarknet:      ".weights",
	EngineONNX:         ".onnx",
}

// ParseEngineKind normalizes user input ("YOLO-v8", "mask_rcnn") to a
// known kind.
func ParseEngineKind(s string) (EngineKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "", "_", "", " ", "").Replace(normalized)
	kind := EngineKind(normalized)
	_, ok := engineArtifactSuffix[kind]
	return kind, ok
}

// ArtifactSuffix returns the file suffix weights for this kind must carry,
// including the leading dot.
func (k EngineKind) ArtifactSuffix() string {
	return engineArtifactSuffix[k]
}

// SupportedEngineKinds returns every registered kind in stable order.
func SupportedEngineKinds() []EngineKind {
	kinds := make([]EngineKind, 0, len(engineArtifactSuffix))
	for k := range engineArtifactSuffix {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// InferenceEngine is a registered detector artifact. ArtifactName is a bare
// filename inside the uploads directory, never a path.
type InferenceEngine struct {
	ID           uuid.UUID  `gorm:"primaryKey;type:uuid"`
	Kind         EngineKind `gorm:"type:varchar(30);not null;index"`
	Version      string     `gorm:"size:50;not null"`
	ArtifactName string     `gorm:"size:255;not null;uniqueIndex"`
	SizeBytes    int64      `gorm:"not null"`
	SHA256       string     `gorm:"column:sha256;size:64"`
	Description  string     `gorm:"type:text"`
	Active       bool       `gorm:"not null;index"`
	CreatedByID  *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (InferenceEngine) TableName() string {
	return "inference_engines"
}

func (e *InferenceEngine) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

// CacheKey identifies the loaded form of this engine. Two rows with the same
// key load to the same detector.
func (e *InferenceEngine) CacheKey() string {
	return e.ID.String() + ":" + e.Version + ":" + e.ArtifactName + ":" + e.SHA256
}
