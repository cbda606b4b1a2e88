package encoder

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// toolEncoder encodes by writing a PNG to a temp file and shelling out to
// a command-line encoder. This avoids CGO for formats the standard
// library cannot write.
type toolEncoder struct {
	format  string
	ext     string
	binary  string
	install string
	args    func(quality int, src, dst string) []string

	once sync.Once
	path string
}

func (e *toolEncoder) Format() string    { return e.format }
func (e *toolEncoder) Extension() string { return e.ext }

func (e *toolEncoder) Available() bool {
	e.once.Do(func() {
		if path, err := exec.LookPath(e.binary); err == nil {
			e.path = path
		}
	})
	return e.path != ""
}

func (e *toolEncoder) Encode(img image.Image, quality int) ([]byte, error) {
	if !e.Available() {
		return nil, fmt.Errorf("%s not found in PATH; install with: %s", e.binary, e.install)
	}

	id := tempCounter.Add(1)
	srcFile, err := os.CreateTemp("", fmt.Sprintf("photoedit_%s_src_%d_*.png", e.format, id))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := srcFile.Name()
	defer os.Remove(srcPath)

	dstFile, err := os.CreateTemp("", fmt.Sprintf("photoedit_%s_dst_%d_*.%s", e.format, id, e.ext))
	if err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	if err := png.Encode(srcFile, img); err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("encode temp png: %w", err)
	}
	if err := srcFile.Close(); err != nil {
		return nil, fmt.Errorf("close temp png: %w", err)
	}

	cmd := exec.Command(e.path, e.args(normalizeQuality(quality), srcPath, dstPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", e.binary, err, string(out))
	}
	return os.ReadFile(dstPath)
}

// NewWebPEncoder shells out to cwebp.
func NewWebPEncoder() Encoder {
	return &toolEncoder{
		format:  "webp",
		ext:     "webp",
		binary:  "cwebp",
		install: "brew install webp / apt install webp",
		args: func(q int, src, dst string) []string {
			return []string{"-q", strconv.Itoa(q), "-m", "6", "-mt", "-quiet", src, "-o", dst}
		},
	}
}

// NewAVIFEncoder shells out to avifenc.
func NewAVIFEncoder() Encoder {
	return &toolEncoder{
		format:  "avif",
		ext:     "avif",
		binary:  "avifenc",
		install: "brew install libavif / apt install libavif-bin",
		args: func(q int, src, dst string) []string {
			// avifenc quantizers run 0 (best) to 63.
			avifQ := strconv.Itoa(63 - q*63/100)
			return []string{"--min", avifQ, "--max", avifQ, "--speed", "6", "-j", "all", src, dst}
		},
	}
}
