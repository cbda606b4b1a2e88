package matte

import (
	"fmt"
	"image"
	"image/color"

	"github.com/AnyUserName/photoedit/internal/apperr"
	"github.com/AnyUserName/photoedit/internal/raster"
)

// White is the default background behind a removed background.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Composite flattens a generator result onto an opaque background color.
//
// The output has fg's size, and the result must decode to exactly that
// size. A cutout (a result carrying color) supplies its own colors; a bare
// mask borrows them from fg. Per channel:
//
//	out = color*α + bg*(1-α)
//
// with α the 8-bit alpha scaled to [0,1].
func Composite(fg *raster.Image, res Result, bg color.NRGBA) (*raster.Image, error) {
	if fg.Empty() {
		return nil, apperr.NewNoImageError("composite")
	}
	decoded, err := res.Decode()
	if err != nil {
		return nil, err
	}

	w, h := fg.Width(), fg.Height()
	mb := decoded.Bounds()
	if mb.Dx() != w || mb.Dy() != h {
		return nil, apperr.NewDecodeError("decode matte",
			fmt.Errorf("matte is %dx%d, image is %dx%d", mb.Dx(), mb.Dy(), w, h))
	}

	bgc := [3]uint32{uint32(bg.B), uint32(bg.G), uint32(bg.R)}
	out := raster.New(w, h)

	for y := 0; y < h; y++ {
		fi := y * fg.Stride
		oi := y * out.Stride
		for x := 0; x < w; x++ {
			var a uint32
			var c [3]uint32 // B, G, R
			switch m := decoded.(type) {
			case *image.NRGBA:
				i := m.PixOffset(mb.Min.X+x, mb.Min.Y+y)
				c = [3]uint32{uint32(m.Pix[i+2]), uint32(m.Pix[i+1]), uint32(m.Pix[i+0])}
				a = uint32(m.Pix[i+3])
			case *image.Alpha:
				a = uint32(m.Pix[m.PixOffset(mb.Min.X+x, mb.Min.Y+y)])
				c = [3]uint32{uint32(fg.Pix[fi]), uint32(fg.Pix[fi+1]), uint32(fg.Pix[fi+2])}
			case *image.Gray:
				a = uint32(m.Pix[m.PixOffset(mb.Min.X+x, mb.Min.Y+y)])
				c = [3]uint32{uint32(fg.Pix[fi]), uint32(fg.Pix[fi+1]), uint32(fg.Pix[fi+2])}
			}
			for ch := 0; ch < 3; ch++ {
				out.Pix[oi+ch] = uint8((c[ch]*a + bgc[ch]*(255-a) + 127) / 255)
			}
			fi += raster.Channels
			oi += raster.Channels
		}
	}
	return out, nil
}
