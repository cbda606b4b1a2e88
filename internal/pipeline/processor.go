package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/photoedit/internal/apperr"
	"github.com/AnyUserName/photoedit/internal/encoder"
	"github.com/AnyUserName/photoedit/internal/hasher"
	"github.com/AnyUserName/photoedit/internal/manifest"
	"github.com/AnyUserName/photoedit/internal/raster"
	"github.com/AnyUserName/photoedit/internal/session"
	"github.com/sirupsen/logrus"
)

// processResult holds the result of processing a single source image.
type processResult struct {
	key   string
	entry manifest.Entry
	err   error
}

// rendered is a baked edit ready for encoding.
type rendered struct {
	img   *raster.Image
	entry manifest.Entry // source, ops and params filled in
}

// render decodes src, replays the recipe in a fresh session and bakes the
// result. Each call owns its own session, so calls may run concurrently.
func render(ctx context.Context, src Source, cfg Config, log *logrus.Entry) (*rendered, error) {
	data, err := os.ReadFile(src.AbsPath)
	if err != nil {
		return nil, apperr.NewIOError("read "+src.RelPath, err)
	}
	img, err := raster.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.RelPath, err)
	}

	opts := []session.Option{
		session.WithBackground(cfg.Background),
		session.WithLogger(log),
	}
	if cfg.Matte != nil {
		opts = append(opts, session.WithMatteGenerator(cfg.Matte))
	}
	s := session.New(opts...)
	defer s.Close()

	if _, err := s.Load(img); err != nil {
		return nil, fmt.Errorf("%s: %w", src.RelPath, err)
	}

	if cfg.MatteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.MatteTimeout)
		defer cancel()
	}
	if err := cfg.Recipe.Apply(ctx, s); err != nil {
		return nil, fmt.Errorf("%s: %w", src.RelPath, err)
	}

	baked, err := s.Bake()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.RelPath, err)
	}

	return &rendered{
		img: baked,
		entry: manifest.Entry{
			Source: manifest.SourceInfo{
				Path:   src.RelPath,
				Width:  img.Width(),
				Height: img.Height(),
				Format: src.Format,
				Size:   src.Size,
				Hash:   hasher.ContentHash(data, hasher.NameLen),
			},
			Ops:        cfg.Recipe.OpNames(),
			Params:     s.Params(),
			RasterHash: hasher.RasterHash(baked, hasher.NameLen),
		},
	}, nil
}

// encode fills in the output section of r.entry, except the path.
func (r *rendered) encode(enc encoder.Encoder, quality int) ([]byte, error) {
	data, err := enc.Encode(r.img, quality)
	if err != nil {
		return nil, apperr.NewEncodeError(enc.Format(), err)
	}
	avg := computeAvgColor(r.img)
	r.entry.Output = manifest.Output{
		Format: enc.Format(),
		Width:  r.img.Width(),
		Height: r.img.Height(),
		Size:   int64(len(data)),
		Hash:   hasher.ContentHash(data, hasher.NameLen),
	}
	r.entry.AspectRatio = float64(r.img.Width()) / float64(r.img.Height())
	r.entry.AvgColor = &avg
	return data, nil
}

// processImage handles a single source image: render, encode and write a
// content-addressed file under cfg.OutputDir.
func processImage(ctx context.Context, src Source, cfg Config, enc encoder.Encoder, log *logrus.Entry) processResult {
	result := processResult{key: src.Key}

	r, err := render(ctx, src, cfg, log)
	if err != nil {
		result.err = err
		return result
	}
	data, err := r.encode(enc, cfg.quality())
	if err != nil {
		result.err = fmt.Errorf("%s: %w", src.RelPath, err)
		return result
	}

	keyDir := filepath.Dir(src.Key)
	if keyDir != "." {
		if err := os.MkdirAll(filepath.Join(cfg.OutputDir, keyDir), 0o755); err != nil {
			result.err = apperr.NewIOError("create "+keyDir, err)
			return result
		}
	}

	// Build filename: key.hash.ext
	fileName := fmt.Sprintf("%s.%s.%s", filepath.Base(src.Key), r.entry.Output.Hash[:8], enc.Extension())
	relPath := filepath.ToSlash(filepath.Join(keyDir, fileName))

	if err := os.WriteFile(filepath.Join(cfg.OutputDir, relPath), data, 0o644); err != nil {
		result.err = apperr.NewIOError("write "+relPath, err)
		return result
	}

	r.entry.Output.Path = relPath
	result.entry = r.entry
	return result
}

// EditFile runs cfg.Recipe over a single file and writes the result to
// outPath, picking the encoder from its extension. The returned entry's
// output path is outPath relative to cfg.OutputDir when that is set.
func EditFile(ctx context.Context, cfg Config, inPath, outPath string) (manifest.Entry, error) {
	cfg = cfg.withDefaults()

	src, err := NewSource(inPath)
	if err != nil {
		return manifest.Entry{}, apperr.NewIOError("open "+inPath, err)
	}
	enc, err := encoder.NewRegistry().ForPath(outPath)
	if err != nil {
		return manifest.Entry{}, apperr.NewEncodeError(outPath, err)
	}

	log := cfg.Log.WithField("key", src.Key)
	r, err := render(ctx, src, cfg, log)
	if err != nil {
		return manifest.Entry{}, err
	}
	data, err := r.encode(enc, cfg.quality())
	if err != nil {
		return manifest.Entry{}, err
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return manifest.Entry{}, apperr.NewIOError("write "+outPath, err)
	}

	rel := outPath
	if cfg.OutputDir != "" {
		if p, err := filepath.Rel(cfg.OutputDir, outPath); err == nil {
			rel = p
		}
	}
	r.entry.Output.Path = filepath.ToSlash(rel)

	log.WithFields(logrus.Fields{
		"output": outPath,
		"format": enc.Format(),
		"bytes":  len(data),
	}).Info("edit written")
	return r.entry, nil
}

// computeAvgColor returns the mean [R,G,B] of a raster.
func computeAvgColor(img *raster.Image) [3]uint8 {
	count := uint64(img.Width()) * uint64(img.Height())
	if count == 0 {
		return [3]uint8{0, 0, 0}
	}
	var rSum, gSum, bSum uint64
	rowLen := img.Width() * raster.Channels
	for y := 0; y < img.Height(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		for i := 0; i < len(row); i += raster.Channels {
			bSum += uint64(row[i+0])
			gSum += uint64(row[i+1])
			rSum += uint64(row[i+2])
		}
	}
	return [3]uint8{
		uint8(rSum / count),
		uint8(gSum / count),
		uint8(bSum / count),
	}
}
