// Package display fits images into a fixed viewport for presentation.
// Nothing produced here is ever written back into an edit session.
package display

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Viewport is the fixed presentation area in pixels.
type Viewport struct {
	W, H int
}

// DefaultViewport matches the editor canvas.
var DefaultViewport = Viewport{W: 560, H: 400}

func (v Viewport) String() string { return fmt.Sprintf("%dx%d", v.W, v.H) }

// Valid reports whether both sides are positive.
func (v Viewport) Valid() bool { return v.W > 0 && v.H > 0 }

// Frame is a scaled image and where its top-left corner sits inside the
// viewport.
type Frame struct {
	Image    *image.NRGBA
	OffsetX  int
	OffsetY  int
	Viewport Viewport
}

// Fit scales img to the largest size that fits vp while keeping its aspect
// ratio, then centers it. Images smaller than vp are scaled up.
func Fit(img image.Image, vp Viewport) Frame {
	if img == nil || img.Bounds().Empty() || !vp.Valid() {
		return Frame{Viewport: vp}
	}
	w, h := FitSize(img.Bounds().Dx(), img.Bounds().Dy(), vp)
	return Frame{
		Image:    imaging.Resize(img, w, h, imaging.Lanczos),
		OffsetX:  floorDiv(vp.W-w, 2),
		OffsetY:  floorDiv(vp.H-h, 2),
		Viewport: vp,
	}
}

// FitSize returns the scaled dimensions Fit would use for a w×h image.
func FitSize(w, h int, vp Viewport) (int, int) {
	scale := math.Min(float64(vp.W)/float64(w), float64(vp.H)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	return max(1, nw), max(1, nh)
}

// Compose paints the frame onto a viewport-sized canvas filled with bg.
func (f Frame) Compose(bg color.Color) *image.NRGBA {
	canvas := imaging.New(f.Viewport.W, f.Viewport.H, bg)
	if f.Image == nil {
		return canvas
	}
	return imaging.Paste(canvas, f.Image, image.Pt(f.OffsetX, f.OffsetY))
}

// Empty reports whether the frame has nothing to render.
func (f Frame) Empty() bool { return f.Image == nil }

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
