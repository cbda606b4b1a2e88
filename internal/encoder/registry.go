package encoder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// formatPriority orders formats in listings.
var formatPriority = []string{"jpeg", "png", "webp", "avif", "tiff", "bmp"}

// extAliases maps file extensions and loose names to canonical formats.
var extAliases = map[string]string{
	"jpg":  "jpeg",
	"jpeg": "jpeg",
	"jpe":  "jpeg",
	"png":  "png",
	"webp": "webp",
	"avif": "avif",
	"tif":  "tiff",
	"tiff": "tiff",
	"bmp":  "bmp",
}

// Registry holds all available encoders keyed by format.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry, probing all encoders for availability.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[string]Encoder),
	}

	all := []Encoder{
		&JPEGEncoder{},
		&PNGEncoder{},
		&BMPEncoder{},
		&TIFFEncoder{},
		NewWebPEncoder(),
		NewAVIFEncoder(),
	}
	for _, enc := range all {
		if enc.Available() {
			r.encoders[enc.Format()] = enc
		}
	}
	return r
}

// CanonicalFormat maps "jpg", ".TIF" and friends to a format name. It
// returns "" for anything unrecognised.
func CanonicalFormat(name string) string {
	return extAliases[strings.ToLower(strings.TrimPrefix(name, "."))]
}

// Get returns an encoder for the given format, or nil if unavailable.
func (r *Registry) Get(format string) Encoder {
	return r.encoders[CanonicalFormat(format)]
}

// ForPath picks the encoder for a destination file. A path without an
// extension gets JPEG.
func (r *Registry) ForPath(path string) (Encoder, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		ext = "jpeg"
	}
	format := CanonicalFormat(ext)
	if format == "" {
		return nil, fmt.Errorf("unsupported output extension %q (have: %s)", ext, strings.Join(r.Available(), ", "))
	}
	enc := r.encoders[format]
	if enc == nil {
		return nil, fmt.Errorf("%s encoder is not available on this system", format)
	}
	return enc, nil
}

// Available returns all available format names.
func (r *Registry) Available() []string {
	var result []string
	for _, f := range formatPriority {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(avail, ", "))
}
