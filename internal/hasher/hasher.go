// Package hasher fingerprints encoded files and decoded rasters with
// xxHash64. Output files are named by content hash so identical edits
// collapse to one file.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/AnyUserName/photoedit/internal/raster"
)

// NameLen is the hex length used for content-addressed filenames.
const NameLen = 16

// ContentHash returns the hex xxHash64 of data, truncated to hexLen
// characters when hexLen is positive.
func ContentHash(data []byte, hexLen int) string {
	return format(xxhash.Sum64(data), hexLen)
}

// ContentHashReader streams r through xxHash64.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return format(h.Sum64(), hexLen), nil
}

// RasterHash fingerprints decoded pixels. Two rasters hash equal iff they
// have the same dimensions and channel bytes, regardless of stride.
func RasterHash(img *raster.Image, hexLen int) string {
	h := xxhash.New()
	var dims [8]byte
	if img.Empty() {
		h.Write(dims[:])
		return format(h.Sum64(), hexLen)
	}
	binary.BigEndian.PutUint32(dims[:4], uint32(img.Width()))
	binary.BigEndian.PutUint32(dims[4:], uint32(img.Height()))
	h.Write(dims[:])
	rowLen := img.Width() * raster.Channels
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		off := img.PixOffset(img.Rect.Min.X, y)
		h.Write(img.Pix[off : off+rowLen])
	}
	return format(h.Sum64(), hexLen)
}

func format(v uint64, hexLen int) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	full := hex.EncodeToString(b[:])
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
