package vision

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
)

var ErrEmptyPayload = errors.New("empty frame payload")

var magicPrefixes = []struct {
	format string
	magic  []byte
}{
	{"jpeg", []byte{0xFF, 0xD8, 0xFF}},
	{"png", []byte{0x89, 'P', 'N', 'G'}},
	{"gif", []byte("GIF8")},
	{"bmp", []byte("BM")},
	{"webp", []byte("RIFF")},
}

// sniffFormat returns the image format named by the leading magic bytes, or "".
func sniffFormat(data []byte) string {
	for _, p := range magicPrefixes {
		if bytes.HasPrefix(data, p.magic) {
			return p.format
		}
	}
	return ""
}

// DecodePayload accepts raw image bytes, a base64 string or a data URL and
// returns the encoded image bytes.
func DecodePayload(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyPayload
	}
	if sniffFormat(payload) != "" {
		return payload, nil
	}

	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "data:") {
		comma := strings.IndexByte(text, ',')
		if comma < 0 || !strings.Contains(text[:comma], ";base64") {
			return nil, errors.New("data URL is not base64 encoded")
		}
		text = text[comma+1:]
	}
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, text)
	if text == "" {
		return nil, ErrEmptyPayload
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(text); err == nil && len(data) > 0 {
			return data, nil
		}
	}
	return nil, errors.New("payload is neither an image nor base64")
}
