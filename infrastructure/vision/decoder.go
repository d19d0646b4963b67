package vision

import "errors"

var ErrUndecodable = errors.New("failed to decode image")

// Frame is the metadata of a decoded frame
type Frame struct {
	Width  int
	Height int
	Format string
}

// Decoder validates an encoded frame by fully decoding it.
type Decoder interface {
	Decode(data []byte) (*Frame, error)
}
