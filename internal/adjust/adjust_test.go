package adjust

import (
	"math"
	"testing"

	"github.com/AnyUserName/photoedit/internal/raster"
)

func makeNoise(w, h int) *raster.Image {
	m := raster.New(w, h)
	seed := uint32(2463534242)
	for i := range m.Pix {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		m.Pix[i] = uint8(seed)
	}
	return m
}

func onePixel(b, g, r uint8) *raster.Image {
	m := raster.New(1, 1)
	m.SetBGR(0, 0, b, g, r)
	return m
}

func TestBrightnessContrast_Identity(t *testing.T) {
	img := makeNoise(31, 17)
	out := BrightnessContrast(img, 0, 1.0)
	if !out.Equal(img) {
		t.Fatal("brightness 0 / contrast 1.0 changed pixels")
	}
	if &out.Pix[0] == &img.Pix[0] {
		t.Error("output shares the input buffer")
	}
}

func TestBrightnessContrast_Nil(t *testing.T) {
	if BrightnessContrast(nil, 10, 2) != nil {
		t.Error("nil input should yield nil")
	}
	if Sepia(nil, 50) != nil {
		t.Error("nil input should yield nil")
	}
	if Apply(nil, Defaults()) != nil {
		t.Error("nil input should yield nil")
	}
}

func TestBrightnessContrast_Truncates(t *testing.T) {
	// 3*1.5 - 1 = 3.5 truncates to 3; 100*0.5 - 100 saturates to 0.
	out := BrightnessContrast(onePixel(3, 100, 255), -1, 1.5)
	b, g, r := out.BGRAt(0, 0)
	if b != 3 {
		t.Errorf("b: got %d, want 3", b)
	}
	if g != 149 {
		t.Errorf("g: got %d, want 149", g)
	}
	if r != 255 {
		t.Errorf("r: got %d, want 255", r)
	}

	out = BrightnessContrast(onePixel(100, 10, 0), -100, 0.5)
	if b, g, r := out.BGRAt(0, 0); b != 0 || g != 0 || r != 0 {
		t.Errorf("negative results must saturate to 0, got (%d,%d,%d)", b, g, r)
	}
}

func TestBrightnessContrast_SaturationBounds(t *testing.T) {
	img := raster.New(256, 1)
	for x := 0; x < 256; x++ {
		img.SetBGR(x, 0, uint8(x), uint8(255-x), uint8(x/2))
	}
	for _, b := range []int{-100, -37, 0, 55, 100} {
		for _, c := range []float64{0.5, 0.9, 1.0, 2.2, 3.0} {
			out := BrightnessContrast(img, b, c)
			for x := 0; x < 256; x++ {
				for ch := 0; ch < 3; ch++ {
					want := float64(img.Pix[x*3+ch])*c + float64(b)
					want = math.Max(0, math.Min(255, want))
					if got := out.Pix[x*3+ch]; got != uint8(want) {
						t.Fatalf("b=%d c=%.1f x=%d ch=%d: got %d, want %d", b, c, x, ch, got, uint8(want))
					}
				}
			}
		}
	}
}

func TestSepia_ZeroIsIdentity(t *testing.T) {
	img := makeNoise(8, 8)
	if out := Sepia(img, 0); out != img {
		t.Fatal("strength 0 should return the input raster")
	}
	if out := Sepia(img, -20); out != img {
		t.Fatal("negative strength clamps to 0 and returns the input")
	}
}

func TestSepia_FullStrength(t *testing.T) {
	tests := []struct {
		name    string
		b, g, r uint8
		want    [3]uint8
	}{
		{"mixed", 10, 100, 200, [3]uint8{82, 106, 119}},
		{"white", 255, 255, 255, [3]uint8{239, 255, 255}},
		{"black", 0, 0, 0, [3]uint8{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Sepia(onePixel(tt.b, tt.g, tt.r), 100)
			b, g, r := out.BGRAt(0, 0)
			if got := [3]uint8{b, g, r}; got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSepia_FullStrengthMatchesKernel(t *testing.T) {
	img := makeNoise(23, 11)
	out := Sepia(img, 100)
	for i := 0; i < len(img.Pix); i += 3 {
		for c := 0; c < 3; c++ {
			k := sepiaKernel[c]
			v := k[0]*float64(img.Pix[i]) + k[1]*float64(img.Pix[i+1]) + k[2]*float64(img.Pix[i+2])
			want := uint8(math.Min(255, math.RoundToEven(v)))
			if out.Pix[i+c] != want {
				t.Fatalf("pix %d ch %d: got %d, want %d", i/3, c, out.Pix[i+c], want)
			}
		}
	}
}

func TestSepia_HalfStrengthBlends(t *testing.T) {
	out := Sepia(onePixel(10, 100, 200), 50)
	b, g, r := out.BGRAt(0, 0)
	// sepia (82,106,119) averaged with (10,100,200); 159.5 rounds to even.
	if b != 46 || g != 103 || r != 160 {
		t.Errorf("got (%d,%d,%d), want (46,103,160)", b, g, r)
	}
}

func TestApply_OrderIsNotCommutative(t *testing.T) {
	img := onePixel(10, 100, 200)
	bcThenSepia := Sepia(BrightnessContrast(img, 50, 1.5), 100)
	sepiaThenBC := BrightnessContrast(Sepia(img, 100), 50, 1.5)
	if bcThenSepia.Equal(sepiaThenBC) {
		t.Fatal("expected the two orders to differ")
	}

	applied := Apply(img, Params{Brightness: 50, Contrast: 1.5, Sepia: 100})
	if !applied.Equal(bcThenSepia) {
		t.Error("Apply must run brightness/contrast before sepia")
	}
}

func TestApply_ClampsParams(t *testing.T) {
	img := makeNoise(5, 5)
	got := Apply(img, Params{Brightness: 500, Contrast: 9, Sepia: 250})
	want := Apply(img, Params{Brightness: 100, Contrast: 3, Sepia: 100})
	if !got.Equal(want) {
		t.Error("out-of-range params were not clamped")
	}
}

func TestApply_RedScenario(t *testing.T) {
	img := raster.New(100, 50)
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i+2] = 255
	}
	out := Apply(img, Params{Brightness: 50, Contrast: 1.2, Sepia: 0})
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			b, g, r := out.BGRAt(x, y)
			if r != 255 || g != 50 || b != 50 {
				t.Fatalf("(%d,%d): got b=%d g=%d r=%d", x, y, b, g, r)
			}
		}
	}
}

func TestParams_Clamp(t *testing.T) {
	tests := []struct {
		in, want Params
	}{
		{Params{0, 1, 0}, Params{0, 1, 0}},
		{Params{-150, 0.1, -3}, Params{-100, 0.5, 0}},
		{Params{150, 4, 300}, Params{100, 3, 100}},
		{Params{10, math.NaN(), 10}, Params{10, 1, 10}},
	}
	for _, tt := range tests {
		if got := tt.in.Clamp(); got != tt.want {
			t.Errorf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if !Defaults().IsNeutral() {
		t.Error("defaults should be neutral")
	}
}
