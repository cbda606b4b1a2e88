// Package transform holds the destructive edits. Each function returns a
// new raster meant to replace the session baseline outright.
package transform

import (
	"fmt"
	"strings"

	"github.com/AnyUserName/photoedit/internal/raster"
	"github.com/disintegration/imaging"
)

// Axis selects the mirror direction for Flip.
type Axis int

const (
	// Horizontal mirrors left to right.
	Horizontal Axis = iota
	// Vertical mirrors top to bottom.
	Vertical
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis accepts "h", "v", "horizontal" or "vertical".
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	}
	return 0, fmt.Errorf("unknown flip axis %q (want h or v)", s)
}

// Rotate90Clockwise turns the raster a quarter turn clockwise; width and
// height swap.
func Rotate90Clockwise(img *raster.Image) *raster.Image {
	if img.Empty() {
		return img
	}
	// imaging rotates counter-clockwise.
	return raster.FromImage(imaging.Rotate270(img))
}

// Flip mirrors the raster along axis.
func Flip(img *raster.Image, axis Axis) *raster.Image {
	if img.Empty() {
		return img
	}
	if axis == Vertical {
		return raster.FromImage(imaging.FlipV(img))
	}
	return raster.FromImage(imaging.FlipH(img))
}

// Invert replaces every channel with 255 - v.
func Invert(img *raster.Image) *raster.Image {
	if img.Empty() {
		return img
	}
	return raster.FromImage(imaging.Invert(img))
}
