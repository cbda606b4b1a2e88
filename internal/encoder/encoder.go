// Package encoder turns a baked raster into file bytes. Export picks the
// encoder from the target file extension.
package encoder

import (
	"image"
)

// DefaultQuality applies when a caller passes quality <= 0.
const DefaultQuality = 95

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the canonical format name (e.g. "jpeg", "png").
	Format() string

	// Encode converts the image to bytes at the given quality (1-100).
	// Lossless encoders ignore quality.
	Encode(img image.Image, quality int) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp, avifenc) may not be installed.
	Available() bool

	// Extension returns the preferred file extension without dot.
	Extension() string
}

func normalizeQuality(q int) int {
	if q <= 0 || q > 100 {
		return DefaultQuality
	}
	return q
}
