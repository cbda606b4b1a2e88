package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/photoedit/internal/encoder"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the input directory.
	RelPath string
	// Key is the entry key (relpath without extension).
	Key string
	// Format is the canonical source format (jpeg, png, tiff, ...).
	Format string
	// Size is the file size in bytes.
	Size int64
}

// imageExtensions lists recognized image file extensions.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// IsImage reports whether path has a recognized image extension.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// NewSource describes a single file outside any scan, keyed by its base
// name.
func NewSource(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, err
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%s is a directory", path)
	}
	return newSource(path, filepath.Base(path), info.Size()), nil
}

func newSource(absPath, relPath string, size int64) Source {
	ext := filepath.Ext(relPath)
	format := encoder.CanonicalFormat(ext)
	if format == "" {
		format = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	return Source{
		AbsPath: absPath,
		RelPath: filepath.ToSlash(relPath),
		Key:     filepath.ToSlash(strings.TrimSuffix(relPath, ext)),
		Format:  format,
		Size:    size,
	}
}

// ScanImages walks the input directory and returns all image sources in
// lexical order. Hidden directories are skipped.
func ScanImages(inputDir string) ([]Source, error) {
	var sources []Source

	err := filepath.WalkDir(inputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != inputDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsImage(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		sources = append(sources, newSource(path, relPath, info.Size()))
		return nil
	})

	return sources, err
}
