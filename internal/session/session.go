// Package session owns the editor state: one baseline raster and one set
// of tonal parameters.
//
// Two tiers of edits are kept apart on purpose. Destructive transforms
// (rotate, flip, invert, background removal) replace the baseline and leave
// the parameters alone. Loading a new image replaces the baseline and
// resets the parameters to their defaults. Parameters are only ever applied
// on the way out, by PreviewFrame and Bake, and every such call recomputes
// from the baseline.
package session

import (
	"context"
	"errors"
	"image/color"
	"sync"

	"github.com/AnyUserName/photoedit/internal/adjust"
	"github.com/AnyUserName/photoedit/internal/apperr"
	"github.com/AnyUserName/photoedit/internal/display"
	"github.com/AnyUserName/photoedit/internal/logger"
	"github.com/AnyUserName/photoedit/internal/matte"
	"github.com/AnyUserName/photoedit/internal/raster"
	"github.com/AnyUserName/photoedit/internal/transform"
	"github.com/sirupsen/logrus"
)

// Session is an edit session. The zero value is not usable; call New.
type Session struct {
	mu       sync.Mutex
	baseline *raster.Image
	params   adjust.Params

	gen      matte.Generator
	bg       color.NRGBA
	viewport display.Viewport
	sched    Scheduler
	onFrame  func(display.Frame)
	log      *logrus.Entry
}

// Option configures a Session.
type Option func(*Session)

// WithMatteGenerator sets the background-removal backend.
func WithMatteGenerator(g matte.Generator) Option {
	return func(s *Session) { s.gen = g }
}

// WithBackground sets the color placed behind a removed background.
func WithBackground(c color.NRGBA) Option {
	return func(s *Session) { s.bg = c }
}

// WithViewport sets the viewport used for change notifications and Load.
func WithViewport(vp display.Viewport) Option {
	return func(s *Session) { s.viewport = vp }
}

// WithScheduler sets the recompute policy. Default is Immediate.
func WithScheduler(sc Scheduler) Option {
	return func(s *Session) { s.sched = sc }
}

// OnFrame registers a handler that receives a fresh preview after every
// change, as scheduled by the session's Scheduler.
func OnFrame(fn func(display.Frame)) Option {
	return func(s *Session) { s.onFrame = fn }
}

// WithLogger sets the log entry used for operation traces.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Session) { s.log = l }
}

// New creates an empty session.
func New(opts ...Option) *Session {
	s := &Session{
		params:   adjust.Defaults(),
		bg:       matte.White,
		viewport: display.DefaultViewport,
		sched:    Immediate{},
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops the scheduler; pending recomputes are dropped.
func (s *Session) Close() {
	s.sched.Stop()
}

// Load makes img the baseline, resets the parameters and returns a
// preview for the session viewport. The session takes ownership of img.
func (s *Session) Load(img *raster.Image) (display.Frame, error) {
	if img.Empty() {
		return display.Frame{}, apperr.NewDecodeError("load", errors.New("empty image"))
	}

	s.mu.Lock()
	s.baseline = img
	s.params = adjust.Defaults()
	vp := s.viewport
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"width":  img.Width(),
		"height": img.Height(),
	}).Debug("image loaded")

	frame, _ := s.PreviewFrame(vp)
	if s.onFrame != nil {
		s.sched.Schedule(func() { s.onFrame(frame) })
	}
	return frame, nil
}

// LoadFile decodes path and loads it. On failure the current baseline
// and parameters are kept.
func (s *Session) LoadFile(path string) (display.Frame, error) {
	img, err := raster.Open(path)
	if err != nil {
		s.log.WithError(err).WithField("path", path).Warn("load failed")
		return display.Frame{}, err
	}
	return s.Load(img)
}

// HasImage reports whether a baseline is loaded.
func (s *Session) HasImage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline != nil
}

// Baseline returns the current baseline, or nil. It must not be modified.
func (s *Session) Baseline() *raster.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseline
}

// Params returns the current tonal parameters.
func (s *Session) Params() adjust.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetParams stores p, clamped to range, and triggers a recompute.
func (s *Session) SetParams(p adjust.Params) {
	s.mu.Lock()
	s.params = p.Clamp()
	s.mu.Unlock()
	s.changed()
}

// SetBrightness updates only the brightness.
func (s *Session) SetBrightness(v int) {
	s.update(func(p *adjust.Params) { p.Brightness = v })
}

// SetContrast updates only the contrast.
func (s *Session) SetContrast(v float64) {
	s.update(func(p *adjust.Params) { p.Contrast = v })
}

// SetSepia updates only the sepia strength.
func (s *Session) SetSepia(v int) {
	s.update(func(p *adjust.Params) { p.Sepia = v })
}

func (s *Session) update(fn func(*adjust.Params)) {
	s.mu.Lock()
	p := s.params
	fn(&p)
	s.params = p.Clamp()
	s.mu.Unlock()
	s.changed()
}

// Rotate90Clockwise turns the baseline a quarter turn clockwise.
func (s *Session) Rotate90Clockwise() error {
	return s.replace("rotate", transform.Rotate90Clockwise)
}

// Flip mirrors the baseline along axis.
func (s *Session) Flip(axis transform.Axis) error {
	return s.replace("flip-"+axis.String(), func(img *raster.Image) *raster.Image {
		return transform.Flip(img, axis)
	})
}

// InvertColors replaces the baseline with its color complement.
func (s *Session) InvertColors() error {
	return s.replace("invert", transform.Invert)
}

// RemoveBackground sends the baseline to the matte generator in RGB
// order and flattens the result onto the session background. The call
// blocks for as long as the generator takes; ctx is the only bound. Any
// failure leaves the baseline untouched.
func (s *Session) RemoveBackground(ctx context.Context) error {
	s.mu.Lock()
	base := s.baseline
	gen := s.gen
	bg := s.bg
	s.mu.Unlock()

	if base == nil {
		return apperr.NewNoImageError("remove-bg")
	}
	if gen == nil {
		return apperr.NewMatteGeneratorError("no matte generator configured", nil)
	}

	log := s.log.WithFields(logrus.Fields{"op": "remove-bg", "width": base.Width(), "height": base.Height()})
	log.Debug("requesting matte")

	res, err := gen.Matte(ctx, base.ToNRGBA())
	if err != nil {
		log.WithError(err).Warn("matte generator failed")
		if !apperr.IsType(err, apperr.ErrorTypeMatteGenerator) {
			err = apperr.NewMatteGeneratorError("generate matte", err)
		}
		return err
	}

	merged, err := matte.Composite(base, res, bg)
	if err != nil {
		log.WithError(err).Warn("matte composite failed")
		return err
	}

	s.mu.Lock()
	s.baseline = merged
	s.mu.Unlock()
	s.changed()
	return nil
}

// PreviewFrame applies the parameters to the baseline and fits the result
// into vp. It returns false when no image is loaded.
func (s *Session) PreviewFrame(vp display.Viewport) (display.Frame, bool) {
	s.mu.Lock()
	base, p := s.baseline, s.params
	s.mu.Unlock()

	if base == nil {
		return display.Frame{}, false
	}
	return display.Fit(adjust.Apply(base, p), vp), true
}

// Bake returns the export-ready raster: the baseline with the parameters
// applied and no scaling.
func (s *Session) Bake() (*raster.Image, error) {
	s.mu.Lock()
	base, p := s.baseline, s.params
	s.mu.Unlock()

	if base == nil {
		return nil, apperr.NewNoImageError("bake")
	}
	s.log.WithFields(logrus.Fields{
		"brightness": p.Brightness,
		"contrast":   p.Contrast,
		"sepia":      p.Sepia,
	}).Debug("bake")
	return adjust.Apply(base, p), nil
}

func (s *Session) replace(op string, fn func(*raster.Image) *raster.Image) error {
	s.mu.Lock()
	base := s.baseline
	if base == nil {
		s.mu.Unlock()
		return apperr.NewNoImageError(op)
	}
	next := fn(base)
	s.baseline = next
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"op":     op,
		"width":  next.Width(),
		"height": next.Height(),
	}).Debug("baseline replaced")
	s.changed()
	return nil
}

// changed schedules a preview for the frame handler, if any.
func (s *Session) changed() {
	if s.onFrame == nil {
		return
	}
	s.sched.Schedule(func() {
		s.mu.Lock()
		vp := s.viewport
		s.mu.Unlock()
		if frame, ok := s.PreviewFrame(vp); ok {
			s.onFrame(frame)
		}
	})
}
