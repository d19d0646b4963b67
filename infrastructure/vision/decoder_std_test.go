//go:build !gocv
// +build !gocv

package vision

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStdDecoder_Decode(t *testing.T) {
	frame, err := NewDecoder().Decode(encodePNG(t, 32, 24))

	require.NoError(t, err)
	assert.Equal(t, 32, frame.Width)
	assert.Equal(t, 24, frame.Height)
	assert.Equal(t, "png", frame.Format)
}

func TestStdDecoder_RejectsGarbage(t *testing.T) {
	_, err := NewDecoder().Decode([]byte{0xFF, 0xD8, 0xFF, 0x00, 0x01})

	assert.True(t, errors.Is(err, ErrUndecodable))
}
