package raster

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/AnyUserName/photoedit/internal/apperr"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FromImage copies src into a new raster anchored at the origin. Alpha is
// dropped and the stored color channels are kept as-is, the way an opaque
// color decode treats a transparent file.
func FromImage(src image.Image) *Image {
	if r, ok := src.(*Image); ok {
		return r.Clone()
	}

	nrgba, ok := src.(*image.NRGBA)
	if !ok {
		nrgba = imaging.Clone(src)
	}

	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()
	out := New(w, h)
	for y := 0; y < h; y++ {
		si := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
		di := y * out.Stride
		for x := 0; x < w; x++ {
			out.Pix[di+0] = nrgba.Pix[si+2]
			out.Pix[di+1] = nrgba.Pix[si+1]
			out.Pix[di+2] = nrgba.Pix[si+0]
			si += 4
			di += Channels
		}
	}
	return out
}

// Decode reads an encoded image, applies any EXIF orientation, and
// returns it as a raster. Any failure, including an empty image, is a
// decode error.
func Decode(r io.Reader) (*Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.NewDecodeError("decode image", err)
	}
	if img.Bounds().Empty() {
		return nil, apperr.NewDecodeError("decode image", fmt.Errorf("empty image %v", img.Bounds()))
	}
	return FromImage(img), nil
}

// Open decodes the image file at path.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.NewIOError(fmt.Sprintf("open %s", path), err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
