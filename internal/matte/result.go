package matte

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/AnyUserName/photoedit/internal/apperr"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Result is what a Generator hands back: either the encoded bytes it
// produced (typically PNG) or an already decoded image. It is consumed
// once by Composite.
type Result struct {
	Data  []byte
	Image image.Image
}

// Bytes wraps encoded generator output.
func Bytes(data []byte) Result { return Result{Data: data} }

// FromImage wraps a decoded generator output.
func FromImage(img image.Image) Result { return Result{Image: img} }

// Decode turns the result into an image. Bare masks (*image.Alpha,
// *image.Gray) are returned as-is; everything else is converted to NRGBA.
func (r Result) Decode() (image.Image, error) {
	img := r.Image
	if img == nil {
		if len(r.Data) == 0 {
			return nil, apperr.NewDecodeError("decode matte", errors.New("empty generator output"))
		}
		var err error
		img, _, err = image.Decode(bytes.NewReader(r.Data))
		if err != nil {
			return nil, apperr.NewDecodeError("decode matte", err)
		}
	}
	if img.Bounds().Empty() {
		return nil, apperr.NewDecodeError("decode matte", errors.New("empty matte image"))
	}

	switch m := img.(type) {
	case *image.Alpha, *image.Gray:
		return m, nil
	case *image.NRGBA:
		return m, nil
	}
	return imaging.Clone(img), nil
}
