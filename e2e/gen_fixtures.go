//go:build ignore

// gen_fixtures writes sample photos and recipes for a manual smoke run:
//
//	go run e2e/gen_fixtures.go /tmp/pe
//	photoedit batch /tmp/pe/photos -o /tmp/pe/out --recipe /tmp/pe/warm.yaml
//	photoedit validate /tmp/pe/out
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"
)

const warmRecipe = `name: warm
ops:
  - rotate
brightness: 15
contrast: 1.2
sepia: 60
`

const cutoutRecipe = `{
  "name": "cutout",
  "ops": ["remove-bg", "flip-h"],
  "contrast": 1.1
}
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	photos := filepath.Join(dir, "photos")
	must(os.MkdirAll(filepath.Join(photos, "portraits"), 0o755))

	// Landscape sky gradient (JPEG, 640x360).
	writeJPEG(filepath.Join(photos, "sky.jpg"), gradient(640, 360))

	// Portrait subjects on a flat backdrop (PNG, 300x400), for remove-bg.
	for i := 1; i <= 2; i++ {
		name := fmt.Sprintf("subject-%d.png", i)
		writePNG(filepath.Join(photos, "portraits", name), subject(300, 400, uint8(i*70)))
	}

	// Odd-sized scan (TIFF, 101x37) to exercise letterbox rounding.
	writeTIFF(filepath.Join(photos, "scan.tif"), gradient(101, 37))

	must(os.WriteFile(filepath.Join(dir, "warm.yaml"), []byte(warmRecipe), 0o644))
	must(os.WriteFile(filepath.Join(dir, "cutout.json"), []byte(cutoutRecipe), 0o644))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 4 photos and 2 recipes in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 200,
				A: 255,
			})
		}
	}
	return img
}

// subject draws a filled ellipse on a light grey backdrop.
func subject(w, h int, tone uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	rx, ry := float64(w)*0.35, float64(h)*0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := (float64(x)-cx)/rx, (float64(y)-cy)/ry
			c := color.NRGBA{R: 235, G: 235, B: 235, A: 255}
			if dx*dx+dy*dy <= 1 {
				c = color.NRGBA{R: tone, G: 255 - tone, B: tone / 2, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func writePNG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(png.Encode(f, img))
}

func writeJPEG(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(jpeg.Encode(f, img, &jpeg.Options{Quality: 85}))
}

func writeTIFF(path string, img *image.NRGBA) {
	f, err := os.Create(path)
	must(err)
	defer f.Close()
	must(tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
