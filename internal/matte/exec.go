package matte

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/AnyUserName/photoedit/internal/apperr"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// Exec runs background removal by shelling out to the rembg CLI.
// Install: pip install "rembg[cli]"
type Exec struct {
	// Binary overrides the executable name or path (default "rembg").
	Binary string
	// Model selects the segmentation model (rembg -m); empty uses rembg's default.
	Model string
	// MaskOnly asks rembg for a bare alpha mask instead of a cutout.
	MaskOnly bool

	once      sync.Once
	available bool
	path      string
}

// Available returns true if the rembg executable can be found.
func (e *Exec) Available() bool {
	e.once.Do(func() {
		bin := e.Binary
		if bin == "" {
			bin = "rembg"
		}
		path, err := exec.LookPath(bin)
		if err == nil {
			e.available = true
			e.path = path
		}
	})
	return e.available
}

func (e *Exec) Matte(ctx context.Context, rgb *image.NRGBA) (Result, error) {
	if !e.Available() {
		return Result{}, apperr.NewMatteGeneratorError("rembg not found in PATH; install with: pip install \"rembg[cli]\"", nil)
	}

	// rembg reads and writes files; exchange PNGs through temp files.
	id := tempCounter.Add(1)
	srcFile, err := os.CreateTemp("", fmt.Sprintf("photoedit_matte_src_%d_*.png", id))
	if err != nil {
		return Result{}, apperr.NewIOError("create temp", err)
	}
	srcPath := srcFile.Name()
	defer os.Remove(srcPath)

	dstFile, err := os.CreateTemp("", fmt.Sprintf("photoedit_matte_dst_%d_*.png", id))
	if err != nil {
		srcFile.Close()
		return Result{}, apperr.NewIOError("create temp", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	if err := png.Encode(srcFile, rgb); err != nil {
		srcFile.Close()
		return Result{}, apperr.NewEncodeError("encode temp png", err)
	}
	if err := srcFile.Close(); err != nil {
		return Result{}, apperr.NewIOError("close temp", err)
	}

	cmd := exec.CommandContext(ctx, e.path, e.args(srcPath, dstPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(err, ctxErr)
		}
		return Result{}, apperr.NewMatteGeneratorError(fmt.Sprintf("rembg: %s", string(out)), err)
	}

	data, err := os.ReadFile(dstPath)
	if err != nil {
		return Result{}, apperr.NewIOError("read rembg output", err)
	}
	return Bytes(data), nil
}

func (e *Exec) args(src, dst string) []string {
	args := []string{"i"}
	if e.Model != "" {
		args = append(args, "-m", e.Model)
	}
	if e.MaskOnly {
		args = append(args, "-om")
	}
	return append(args, src, dst)
}
