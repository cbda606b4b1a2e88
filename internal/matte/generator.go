// Package matte covers background removal: the contract for the external
// segmentation model that produces a matte, a couple of backends for it,
// and the compositor that flattens the result onto a solid background.
package matte

import (
	"context"
	"image"
)

// Generator produces a foreground cutout or alpha mask for an RGB image.
// Implementations may take seconds. Errors are reported as
// matte_generator failures and are never retried by callers.
type Generator interface {
	Matte(ctx context.Context, rgb *image.NRGBA) (Result, error)
}

// Func adapts a plain function to Generator.
type Func func(ctx context.Context, rgb *image.NRGBA) (Result, error)

func (f Func) Matte(ctx context.Context, rgb *image.NRGBA) (Result, error) {
	return f(ctx, rgb)
}
