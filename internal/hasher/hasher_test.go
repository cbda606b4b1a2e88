package hasher

import (
	"bytes"
	"image"
	"testing"

	"github.com/AnyUserName/photoedit/internal/raster"
)

func TestContentHash(t *testing.T) {
	data := []byte("photoedit")
	full := ContentHash(data, 0)
	if len(full) != 16 {
		t.Fatalf("full hash length: got %d", len(full))
	}
	if got := ContentHash(data, 8); got != full[:8] {
		t.Errorf("truncated: got %q, want %q", got, full[:8])
	}
	if ContentHash([]byte("photoedit!"), 0) == full {
		t.Error("different inputs should hash differently")
	}

	streamed, err := ContentHashReader(bytes.NewReader(data), NameLen)
	if err != nil {
		t.Fatal(err)
	}
	if streamed != full {
		t.Errorf("reader hash %q != %q", streamed, full)
	}
}

func TestRasterHash_StrideIndependent(t *testing.T) {
	tight := raster.New(3, 2)
	for i := range tight.Pix {
		tight.Pix[i] = uint8(i + 1)
	}

	// Same pixels with two bytes of row padding.
	padded := &raster.Image{
		Pix:    make([]uint8, 2*(3*raster.Channels+2)),
		Stride: 3*raster.Channels + 2,
		Rect:   image.Rect(0, 0, 3, 2),
	}
	for y := 0; y < 2; y++ {
		copy(padded.Pix[y*padded.Stride:], tight.Pix[y*tight.Stride:(y+1)*tight.Stride])
		padded.Pix[y*padded.Stride+9] = 0xee
	}

	if RasterHash(tight, 0) != RasterHash(padded, 0) {
		t.Error("padding bytes must not affect the raster hash")
	}
}

func TestRasterHash_Dimensions(t *testing.T) {
	// 2x3 and 3x2 zero rasters have identical bytes but differ in shape.
	if RasterHash(raster.New(2, 3), 0) == RasterHash(raster.New(3, 2), 0) {
		t.Error("shape must be part of the raster hash")
	}
	if RasterHash(nil, 0) == "" {
		t.Error("nil raster should still hash")
	}
}
