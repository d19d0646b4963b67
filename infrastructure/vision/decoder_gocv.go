//go:build gocv
// +build gocv

package vision

import (
	"gocv.io/x/gocv"
)

type GoCVDecoder struct{}

func NewDecoder() Decoder {
	return GoCVDecoder{}
}

func (GoCVDecoder) Decode(data []byte) (*Frame, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, ErrUndecodable
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, ErrUndecodable
	}
	return &Frame{Width: mat.Cols(), Height: mat.Rows(), Format: sniffFormat(data)}, nil
}
