package encoder

import (
	"bytes"
	"image"
	"image/png"
)

// PNGEncoder encodes images to PNG using Go's standard library.
type PNGEncoder struct {
	// Fast trades file size for speed; previews use it.
	Fast bool
}

func (e *PNGEncoder) Format() string    { return "png" }
func (e *PNGEncoder) Extension() string { return "png" }
func (e *PNGEncoder) Available() bool   { return true }

func (e *PNGEncoder) Encode(img image.Image, _ int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(512 * 1024)

	level := png.BestCompression
	if e.Fast {
		level = png.BestSpeed
	}
	enc := &png.Encoder{CompressionLevel: level}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
