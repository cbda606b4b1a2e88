// Package raster holds the editor's working pixel buffer: a dense,
// opaque, 8-bit raster with three channels stored in B, G, R order.
//
// Image implements image.Image so it can be handed to the imaging stack
// and to encoders directly, but every stage of the edit pipeline reads and
// writes Pix in its native channel order.
package raster

import (
	"bytes"
	"image"
	"image/color"
)

// Channels is the number of bytes per pixel.
const Channels = 3

// Image is a B, G, R raster anchored at the origin.
type Image struct {
	// Pix holds pixels in B, G, R order. The pixel at (x, y) starts at
	// Pix[y*Stride + x*3].
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
}

// New allocates a black w×h raster.
func New(w, h int) *Image {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Image{
		Pix:    make([]uint8, w*h*Channels),
		Stride: w * Channels,
		Rect:   image.Rect(0, 0, w, h),
	}
}

// Fill allocates a w×h raster of a single opaque color.
func Fill(w, h int, c color.Color) *Image {
	m := New(w, h)
	r, g, b, _ := c.RGBA()
	br, bg, bb := uint8(r>>8), uint8(g>>8), uint8(b>>8)
	for i := 0; i < len(m.Pix); i += Channels {
		m.Pix[i+0] = bb
		m.Pix[i+1] = bg
		m.Pix[i+2] = br
	}
	return m
}

func (m *Image) ColorModel() color.Model { return color.RGBAModel }

func (m *Image) Bounds() image.Rectangle { return m.Rect }

func (m *Image) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Rect)) {
		return color.RGBA{}
	}
	i := m.PixOffset(x, y)
	return color.RGBA{R: m.Pix[i+2], G: m.Pix[i+1], B: m.Pix[i+0], A: 0xff}
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (m *Image) PixOffset(x, y int) int {
	return (y-m.Rect.Min.Y)*m.Stride + (x-m.Rect.Min.X)*Channels
}

// BGRAt returns the raw channels of pixel (x, y).
func (m *Image) BGRAt(x, y int) (b, g, r uint8) {
	i := m.PixOffset(x, y)
	return m.Pix[i+0], m.Pix[i+1], m.Pix[i+2]
}

// SetBGR writes the raw channels of pixel (x, y).
func (m *Image) SetBGR(x, y int, b, g, r uint8) {
	i := m.PixOffset(x, y)
	m.Pix[i+0] = b
	m.Pix[i+1] = g
	m.Pix[i+2] = r
}

// Width returns the number of columns.
func (m *Image) Width() int { return m.Rect.Dx() }

// Height returns the number of rows.
func (m *Image) Height() int { return m.Rect.Dy() }

// Empty reports whether the raster has no pixels. A nil raster is empty.
func (m *Image) Empty() bool {
	return m == nil || m.Rect.Empty()
}

// Clone returns a deep copy with a tight stride.
func (m *Image) Clone() *Image {
	if m == nil {
		return nil
	}
	w, h := m.Width(), m.Height()
	out := New(w, h)
	rowLen := w * Channels
	for y := 0; y < h; y++ {
		src := m.Pix[y*m.Stride : y*m.Stride+rowLen]
		copy(out.Pix[y*out.Stride:], src)
	}
	return out
}

// Equal reports whether two rasters have the same size and pixels.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.Width() != o.Width() || m.Height() != o.Height() {
		return false
	}
	rowLen := m.Width() * Channels
	for y := 0; y < m.Height(); y++ {
		a := m.Pix[y*m.Stride : y*m.Stride+rowLen]
		b := o.Pix[y*o.Stride : y*o.Stride+rowLen]
		if !bytes.Equal(a, b) {
			return false
		}
	}
	return true
}

// ToNRGBA converts to an opaque NRGBA image in R, G, B order.
func (m *Image) ToNRGBA() *image.NRGBA {
	w, h := m.Width(), m.Height()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := y * m.Stride
		di := y * out.Stride
		for x := 0; x < w; x++ {
			out.Pix[di+0] = m.Pix[si+2]
			out.Pix[di+1] = m.Pix[si+1]
			out.Pix[di+2] = m.Pix[si+0]
			out.Pix[di+3] = 0xff
			si += Channels
			di += 4
		}
	}
	return out
}
