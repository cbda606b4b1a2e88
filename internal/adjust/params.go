package adjust

import "math"

// Parameter ranges. Callers are expected to stay inside them; Clamp pulls
// anything else back in rather than failing.
const (
	MinBrightness = -100
	MaxBrightness = 100
	MinContrast   = 0.5
	MaxContrast   = 3.0
	MinSepia      = 0
	MaxSepia      = 100
)

// Params are the non-destructive tonal settings applied at preview and
// export time. They are never baked into the baseline.
type Params struct {
	Brightness int     `json:"brightness" yaml:"brightness"`
	Contrast   float64 `json:"contrast" yaml:"contrast"`
	Sepia      int     `json:"sepia" yaml:"sepia"`
}

// Defaults returns the neutral parameter set {0, 1.0, 0}.
func Defaults() Params {
	return Params{Brightness: 0, Contrast: 1.0, Sepia: 0}
}

// Clamp returns p with every field forced into its range. A NaN contrast
// becomes the neutral 1.0.
func (p Params) Clamp() Params {
	p.Brightness = clampInt(p.Brightness, MinBrightness, MaxBrightness)
	p.Sepia = clampInt(p.Sepia, MinSepia, MaxSepia)
	switch {
	case math.IsNaN(p.Contrast):
		p.Contrast = 1.0
	case p.Contrast < MinContrast:
		p.Contrast = MinContrast
	case p.Contrast > MaxContrast:
		p.Contrast = MaxContrast
	}
	return p
}

// IsNeutral reports whether applying p leaves every pixel unchanged.
func (p Params) IsNeutral() bool {
	return p == Defaults()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
