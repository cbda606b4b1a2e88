// Package pipeline replays one recipe over a directory of images, one
// independent edit session per image, and collects a manifest.
package pipeline

import (
	"context"
	"fmt"
	"image/color"
	"runtime"
	"sync"
	"time"

	"github.com/AnyUserName/photoedit/internal/apperr"
	"github.com/AnyUserName/photoedit/internal/encoder"
	"github.com/AnyUserName/photoedit/internal/logger"
	"github.com/AnyUserName/photoedit/internal/manifest"
	"github.com/AnyUserName/photoedit/internal/matte"
	"github.com/AnyUserName/photoedit/internal/profile"
	"github.com/AnyUserName/photoedit/internal/recipe"
	"github.com/sirupsen/logrus"
)

// Config holds all parameters for a pipeline run.
type Config struct {
	InputDir  string
	OutputDir string
	Recipe    *recipe.Recipe
	Profile   profile.Profile
	Format    string // output format; empty uses the profile's
	Quality   int    // 0 uses the profile's
	Workers   int

	Matte        matte.Generator
	MatteName    string        // recorded in the manifest
	MatteTimeout time.Duration // per image; 0 means no deadline
	Background   color.NRGBA

	Log *logrus.Entry
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Recipe == nil {
		c.Recipe = recipe.New()
	}
	if c.Profile.Name == "" {
		c.Profile = profile.Get(profile.DefaultName)
	}
	if c.Background == (color.NRGBA{}) {
		c.Background = matte.White
	}
	if c.Log == nil {
		c.Log = logrus.NewEntry(logger.Logger)
	}
	return c
}

func (c Config) quality() int {
	if c.Quality > 0 {
		return c.Quality
	}
	return c.Profile.Quality
}

func (c Config) format() string {
	if c.Format != "" {
		return c.Format
	}
	return c.Profile.Format
}

// Pipeline orchestrates batch edits.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:      cfg.withDefaults(),
		registry: encoder.NewRegistry(),
	}
}

// Run executes the batch and returns the manifest. Images that fail are
// logged and left out; Run only fails when every image fails or the
// context is cancelled.
func (p *Pipeline) Run(ctx context.Context) (*manifest.Manifest, error) {
	log := p.cfg.Log
	log.Debug(p.registry.String())

	enc := p.registry.Get(p.cfg.format())
	if enc == nil {
		return nil, apperr.NewEncodeError(fmt.Sprintf("%s encoder is not available (%s)", p.cfg.format(), p.registry), nil)
	}
	if p.cfg.Recipe.NeedsMatte() && p.cfg.Matte == nil {
		return nil, apperr.NewMatteGeneratorError("recipe removes backgrounds but no matte backend is configured", nil)
	}

	sources, err := ScanImages(p.cfg.InputDir)
	if err != nil {
		return nil, apperr.NewIOError("scan "+p.cfg.InputDir, err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %s", p.cfg.InputDir)
	}
	log.WithFields(logrus.Fields{
		"images":  len(sources),
		"workers": p.cfg.Workers,
		"recipe":  p.cfg.Recipe.Summary(),
	}).Info("batch started")

	results := make([]processResult, len(sources))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, src := range sources {
		wg.Add(1)
		go func(idx int, s Source) {
			defer wg.Done()
			select {
			case sem <- struct{}{}: // acquire
			case <-ctx.Done():
				results[idx] = processResult{key: s.Key, err: ctx.Err()}
				return
			}
			defer func() { <-sem }() // release

			entryLog := log.WithField("key", s.Key)
			entryLog.Debug("processing")

			results[idx] = processImage(ctx, s, p.cfg, enc, entryLog)

			if results[idx].err == nil {
				entryLog.WithField("output", results[idx].entry.Output.Path).Debug("done")
			}
		}(i, src)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := manifest.New(p.cfg.Profile.Name)
	m.Recipe = p.cfg.Recipe.Summary()

	var failed int
	for _, r := range results {
		if r.err != nil {
			failed++
			log.WithError(r.err).WithField("key", r.key).Error("edit failed")
			continue
		}
		m.Entries[r.key] = r.entry
	}

	// Partial failures don't fail the batch.
	if failed > 0 {
		if failed == len(sources) {
			return nil, fmt.Errorf("all %d images failed to process", failed)
		}
		log.Warnf("%d of %d images had errors", failed, len(sources))
	}

	matteName := p.cfg.MatteName
	if matteName == "" && p.cfg.Matte == nil {
		matteName = "none"
	}
	m.BuildInfo = &manifest.BuildInfo{
		Workers: p.cfg.Workers,
		Matte:   matteName,
	}
	m.ComputeStats()
	return m, nil
}
