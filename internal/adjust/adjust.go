// Package adjust implements the tonal stage of the edit pipeline:
// brightness/contrast followed by a sepia blend. Every function is pure
// and returns a new raster; a nil input yields nil.
package adjust

import (
	"math"

	"github.com/AnyUserName/photoedit/internal/raster"
)

// sepiaKernel rows are indexed in the raster's native B, G, R order:
// out[c] = Σ sepiaKernel[c][k] * in[k].
var sepiaKernel = [3][3]float64{
	{0.272, 0.534, 0.131},
	{0.349, 0.686, 0.168},
	{0.393, 0.769, 0.189},
}

// Apply runs the full tonal stage with clamped parameters. Brightness and
// contrast come first and sepia is computed from their output; the two
// steps do not commute.
func Apply(img *raster.Image, p Params) *raster.Image {
	if img == nil {
		return nil
	}
	p = p.Clamp()
	out := BrightnessContrast(img, p.Brightness, p.Contrast)
	return Sepia(out, p.Sepia)
}

// BrightnessContrast maps every channel through in*contrast + brightness,
// saturated to [0,255] and then truncated.
func BrightnessContrast(img *raster.Image, brightness int, contrast float64) *raster.Image {
	if img == nil {
		return nil
	}

	var lut [256]uint8
	for v := range lut {
		lut[v] = saturate(float64(v)*contrast + float64(brightness))
	}

	w, h := img.Width(), img.Height()
	out := raster.New(w, h)
	rowLen := w * raster.Channels
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		dst := out.Pix[y*out.Stride : y*out.Stride+rowLen]
		for i, v := range src {
			dst[i] = lut[v]
		}
	}
	return out
}

// Sepia blends the sepia-toned image with the input at strength/100.
// Strength 0 returns img itself.
func Sepia(img *raster.Image, strength int) *raster.Image {
	if img == nil {
		return nil
	}
	strength = clampInt(strength, MinSepia, MaxSepia)
	if strength == 0 {
		return img
	}

	alpha := float64(strength) / 100
	w, h := img.Width(), img.Height()
	out := raster.New(w, h)
	for y := 0; y < h; y++ {
		si := y * img.Stride
		di := y * out.Stride
		for x := 0; x < w; x++ {
			in := [3]float64{
				float64(img.Pix[si+0]),
				float64(img.Pix[si+1]),
				float64(img.Pix[si+2]),
			}
			for c := 0; c < 3; c++ {
				k := sepiaKernel[c]
				sep := float64(roundSaturate(k[0]*in[0] + k[1]*in[1] + k[2]*in[2]))
				out.Pix[di+c] = roundSaturate(sep*alpha + in[c]*(1-alpha))
			}
			si += raster.Channels
			di += raster.Channels
		}
	}
	return out
}

// saturate clamps to [0,255] and truncates.
func saturate(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// roundSaturate rounds half to even, then clamps to [0,255].
func roundSaturate(v float64) uint8 {
	return saturate(math.RoundToEven(v))
}
