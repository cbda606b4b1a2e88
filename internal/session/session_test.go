package session

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/AnyUserName/photoedit/internal/adjust"
	"github.com/AnyUserName/photoedit/internal/apperr"
	"github.com/AnyUserName/photoedit/internal/display"
	"github.com/AnyUserName/photoedit/internal/matte"
	"github.com/AnyUserName/photoedit/internal/raster"
	"github.com/AnyUserName/photoedit/internal/transform"
)

func pattern(w, h int) *raster.Image {
	m := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetBGR(x, y, uint8(x*3), uint8(y*5), uint8(x+y))
		}
	}
	return m
}

func red(w, h int) *raster.Image {
	return raster.Fill(w, h, color.RGBA{R: 255, A: 255})
}

func TestLoad_ResetsParams(t *testing.T) {
	s := New()
	if _, err := s.Load(pattern(4, 4)); err != nil {
		t.Fatal(err)
	}
	s.SetParams(adjust.Params{Brightness: 30, Contrast: 2, Sepia: 40})

	if _, err := s.Load(pattern(6, 2)); err != nil {
		t.Fatal(err)
	}
	if got := s.Params(); got != adjust.Defaults() {
		t.Errorf("params after load: got %+v, want defaults", got)
	}
}

func TestLoad_ReturnsPreview(t *testing.T) {
	s := New(WithViewport(display.Viewport{W: 200, H: 200}))
	frame, err := s.Load(pattern(100, 50))
	if err != nil {
		t.Fatal(err)
	}
	if frame.Empty() {
		t.Fatal("expected a preview frame")
	}
	if b := frame.Image.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("preview dims: got %v", b)
	}
	if frame.OffsetY != 50 {
		t.Errorf("offsetY: got %d", frame.OffsetY)
	}
}

func TestLoad_RejectsEmpty(t *testing.T) {
	s := New()
	base := pattern(3, 3)
	s.Load(base)

	_, err := s.Load(nil)
	if !apperr.IsType(err, apperr.ErrorTypeDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if s.Baseline() != base {
		t.Error("baseline replaced by a failed load")
	}
}

func TestDestructiveOps_KeepParams(t *testing.T) {
	s := New(WithMatteGenerator(matte.Func(func(_ context.Context, rgb *image.NRGBA) (matte.Result, error) {
		return matte.FromImage(rgb), nil
	})))
	s.Load(pattern(5, 3))
	want := adjust.Params{Brightness: -20, Contrast: 1.5, Sepia: 70}
	s.SetParams(want)

	ops := map[string]func() error{
		"rotate": s.Rotate90Clockwise,
		"flip-h": func() error { return s.Flip(transform.Horizontal) },
		"flip-v": func() error { return s.Flip(transform.Vertical) },
		"invert": s.InvertColors,
		"remove-bg": func() error {
			return s.RemoveBackground(context.Background())
		},
	}
	for name, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got := s.Params(); got != want {
			t.Errorf("%s reset params to %+v", name, got)
		}
	}
}

func TestNoImageLoaded(t *testing.T) {
	s := New(WithMatteGenerator(matte.Func(func(context.Context, *image.NRGBA) (matte.Result, error) {
		t.Error("generator called without an image")
		return matte.Result{}, nil
	})))

	ops := map[string]func() error{
		"rotate":    s.Rotate90Clockwise,
		"flip":      func() error { return s.Flip(transform.Vertical) },
		"invert":    s.InvertColors,
		"remove-bg": func() error { return s.RemoveBackground(context.Background()) },
		"bake": func() error {
			_, err := s.Bake()
			return err
		},
	}
	for name, op := range ops {
		err := op()
		if !errors.Is(err, apperr.ErrNoImage) {
			t.Errorf("%s: expected ErrNoImage, got %v", name, err)
		}
	}
	if _, ok := s.PreviewFrame(display.DefaultViewport); ok {
		t.Error("preview without an image should report nothing to render")
	}
	if s.HasImage() {
		t.Error("HasImage on a fresh session")
	}
}

func TestBake_RedScenario(t *testing.T) {
	s := New()
	s.Load(red(100, 50))
	s.SetBrightness(50)
	s.SetContrast(1.2)
	s.SetSepia(0)

	out, err := s.Bake()
	if err != nil {
		t.Fatal(err)
	}
	if out.Width() != 100 || out.Height() != 50 {
		t.Fatalf("dims: got %dx%d", out.Width(), out.Height())
	}
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			b, g, r := out.BGRAt(x, y)
			if r != 255 || g != 50 || b != 50 {
				t.Fatalf("(%d,%d): got b=%d g=%d r=%d", x, y, b, g, r)
			}
		}
	}
}

func TestBake_LeavesBaselineUntouched(t *testing.T) {
	s := New()
	base := pattern(8, 8)
	orig := base.Clone()
	s.Load(base)
	s.SetParams(adjust.Params{Brightness: 80, Contrast: 2.5, Sepia: 100})

	if _, err := s.Bake(); err != nil {
		t.Fatal(err)
	}
	s.PreviewFrame(display.DefaultViewport)
	if !s.Baseline().Equal(orig) {
		t.Error("bake or preview modified the baseline")
	}
}

func TestRotateThenFlipMatchesDirectTransform(t *testing.T) {
	src := pattern(7, 4)
	s := New()
	s.Load(src.Clone())
	if err := s.Rotate90Clockwise(); err != nil {
		t.Fatal(err)
	}
	if err := s.Flip(transform.Vertical); err != nil {
		t.Fatal(err)
	}

	got := s.Baseline()
	if got.Width() != 4 || got.Height() != 7 {
		t.Fatalf("dims: got %dx%d", got.Width(), got.Height())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 7; x++ {
			sb, sg, sr := src.BGRAt(x, y)
			db, dg, dr := got.BGRAt(3-y, 6-x)
			if sb != db || sg != dg || sr != dr {
				t.Fatalf("src (%d,%d) misplaced", x, y)
			}
		}
	}
}

func TestSetters_Clamp(t *testing.T) {
	s := New()
	s.SetBrightness(1000)
	s.SetContrast(0.01)
	s.SetSepia(-5)
	want := adjust.Params{Brightness: 100, Contrast: 0.5, Sepia: 0}
	if got := s.Params(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRemoveBackground_SendsRGB(t *testing.T) {
	var seen color.NRGBA
	gen := matte.Func(func(_ context.Context, rgb *image.NRGBA) (matte.Result, error) {
		seen = rgb.NRGBAAt(0, 0)
		return matte.FromImage(rgb), nil
	})
	s := New(WithMatteGenerator(gen))
	base := raster.New(1, 1)
	base.SetBGR(0, 0, 30, 20, 10)
	s.Load(base)

	if err := s.RemoveBackground(context.Background()); err != nil {
		t.Fatal(err)
	}
	if seen != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("generator saw %+v", seen)
	}
}

func TestRemoveBackground_Composites(t *testing.T) {
	gen := matte.Func(func(_ context.Context, rgb *image.NRGBA) (matte.Result, error) {
		out := image.NewNRGBA(rgb.Bounds())
		copy(out.Pix, rgb.Pix)
		// Drop the left half.
		for y := 0; y < out.Bounds().Dy(); y++ {
			for x := 0; x < out.Bounds().Dx()/2; x++ {
				out.Pix[out.PixOffset(x, y)+3] = 0
			}
		}
		return matte.FromImage(out), nil
	})
	bg := color.NRGBA{R: 1, G: 2, B: 3, A: 255}
	s := New(WithMatteGenerator(gen), WithBackground(bg))
	src := pattern(6, 2)
	s.Load(src.Clone())

	if err := s.RemoveBackground(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := s.Baseline()
	for y := 0; y < 2; y++ {
		for x := 0; x < 6; x++ {
			b, g, r := got.BGRAt(x, y)
			if x < 3 {
				if b != 3 || g != 2 || r != 1 {
					t.Errorf("(%d,%d) should be background, got (%d,%d,%d)", x, y, b, g, r)
				}
				continue
			}
			sb, sg, sr := src.BGRAt(x, y)
			if b != sb || g != sg || r != sr {
				t.Errorf("(%d,%d) should be foreground", x, y)
			}
		}
	}
}

func TestRemoveBackground_FailureKeepsBaseline(t *testing.T) {
	tests := []struct {
		name     string
		gen      matte.Generator
		wantType apperr.ErrorType
	}{
		{
			name: "generator error",
			gen: matte.Func(func(context.Context, *image.NRGBA) (matte.Result, error) {
				return matte.Result{}, errors.New("model exploded")
			}),
			wantType: apperr.ErrorTypeMatteGenerator,
		},
		{
			name: "undecodable output",
			gen: matte.Func(func(context.Context, *image.NRGBA) (matte.Result, error) {
				return matte.Bytes([]byte("garbage")), nil
			}),
			wantType: apperr.ErrorTypeDecode,
		},
		{
			name: "wrong size",
			gen: matte.Func(func(context.Context, *image.NRGBA) (matte.Result, error) {
				return matte.FromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1))), nil
			}),
			wantType: apperr.ErrorTypeDecode,
		},
		{
			name:     "no generator",
			gen:      nil,
			wantType: apperr.ErrorTypeMatteGenerator,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithMatteGenerator(tt.gen))
			base := pattern(4, 4)
			s.Load(base)

			err := s.RemoveBackground(context.Background())
			if !apperr.IsType(err, tt.wantType) {
				t.Fatalf("expected %s error, got %v", tt.wantType, err)
			}
			if s.Baseline() != base {
				t.Error("baseline changed after a failed removal")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	f, err := os.Create(good)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, pattern(9, 5).ToNRGBA()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New()
	if _, err := s.LoadFile(good); err != nil {
		t.Fatalf("load good: %v", err)
	}
	base := s.Baseline()
	if !base.Equal(pattern(9, 5)) {
		t.Error("loaded pixels differ from the written image")
	}

	if _, err := s.LoadFile(bad); !apperr.IsType(err, apperr.ErrorTypeDecode) {
		t.Errorf("expected decode error, got %v", err)
	}
	if s.Baseline() != base {
		t.Error("failed load replaced the baseline")
	}
}

func TestOnFrame_Immediate(t *testing.T) {
	var frames []display.Frame
	s := New(
		WithViewport(display.Viewport{W: 50, H: 50}),
		OnFrame(func(f display.Frame) { frames = append(frames, f) }),
	)
	s.SetBrightness(10) // no image yet: nothing delivered
	if len(frames) != 0 {
		t.Fatalf("frame delivered without an image")
	}

	s.Load(pattern(10, 10))
	s.SetBrightness(10)
	s.SetSepia(20)
	s.InvertColors()
	if len(frames) != 4 {
		t.Fatalf("frames: got %d, want 4", len(frames))
	}
	for i, f := range frames {
		if f.Image.Bounds().Dx() != 50 {
			t.Errorf("frame %d: width %d", i, f.Image.Bounds().Dx())
		}
	}
}

func TestOnFrame_Debounced(t *testing.T) {
	var mu sync.Mutex
	var frames []display.Frame
	deb := NewDebouncer(time.Hour)
	s := New(
		WithScheduler(deb),
		OnFrame(func(f display.Frame) {
			mu.Lock()
			frames = append(frames, f)
			mu.Unlock()
		}),
	)
	defer s.Close()

	s.Load(red(4, 4))
	for v := -100; v <= 100; v += 10 {
		s.SetBrightness(v)
	}
	deb.Flush()

	mu.Lock()
	defer mu.Unlock()
	if len(frames) != 1 {
		t.Fatalf("frames: got %d, want 1", len(frames))
	}
	// Trailing edge sees the final brightness of +100.
	c := frames[0].Image.NRGBAAt(0, 0)
	if c.G != 100 || c.B != 100 {
		t.Errorf("frame pixel: got %+v", c)
	}
}
