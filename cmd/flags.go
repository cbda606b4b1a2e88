package cmd

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/AnyUserName/photoedit/internal/adjust"
	"github.com/AnyUserName/photoedit/internal/logger"
	"github.com/AnyUserName/photoedit/internal/matte"
	"github.com/AnyUserName/photoedit/internal/recipe"
	"github.com/spf13/cobra"
)

// editFlags are shared by every command that builds a recipe.
type editFlags struct {
	recipePath string
	ops        []string
	brightness int
	contrast   float64
	sepia      int
	background string
}

func (f *editFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.recipePath, "recipe", "r", "", "recipe file (.json, .yaml)")
	fl.StringSliceVar(&f.ops, "op", nil, "operation to apply, in order: rotate, flip-h, flip-v, invert, remove-bg (repeatable)")
	fl.IntVarP(&f.brightness, "brightness", "b", 0, fmt.Sprintf("brightness %d..%d", adjust.MinBrightness, adjust.MaxBrightness))
	fl.Float64VarP(&f.contrast, "contrast", "c", 1.0, fmt.Sprintf("contrast %.1f..%.1f", adjust.MinContrast, adjust.MaxContrast))
	fl.IntVarP(&f.sepia, "sepia", "s", 0, fmt.Sprintf("sepia %d..%d", adjust.MinSepia, adjust.MaxSepia))
	fl.StringVar(&f.background, "background", "#ffffff", "color behind removed backgrounds")
}

// recipe loads --recipe if given, appends --op and overrides parameters
// that were set explicitly on the command line.
func (f *editFlags) recipe(cmd *cobra.Command) (*recipe.Recipe, error) {
	r := recipe.New()
	if f.recipePath != "" {
		loaded, err := recipe.Load(f.recipePath)
		if err != nil {
			return nil, err
		}
		r = loaded
	}

	ops, err := recipe.ParseOps(f.ops)
	if err != nil {
		return nil, err
	}
	r.Ops = append(r.Ops, ops...)

	fl := cmd.Flags()
	if fl.Changed("brightness") {
		r.Brightness = f.brightness
	}
	if fl.Changed("contrast") {
		r.Contrast = f.contrast
	}
	if fl.Changed("sepia") {
		r.Sepia = f.sepia
	}
	if p := r.Params.Clamp(); p != r.Params {
		logger.Warnf("parameters clamped to %+v", p)
	}
	return r, nil
}

func (f *editFlags) backgroundColor() (color.NRGBA, error) {
	return parseColor(f.background)
}

// parseColor accepts "#rrggbb", "rrggbb", "#rgb", "white" and "black".
func parseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "white":
		return matte.White, nil
	case "black":
		return color.NRGBA{A: 255}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
