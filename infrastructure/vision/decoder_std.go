//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

type StdDecoder struct{}

// NewDecoder returns the image/* decoder. Build with -tags gocv to decode
// through OpenCV instead.
func NewDecoder() Decoder {
	return StdDecoder{}
}

func (StdDecoder) Decode(data []byte) (*Frame, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUndecodable)
	}
	return &Frame{Width: b.Dx(), Height: b.Dy(), Format: format}, nil
}
