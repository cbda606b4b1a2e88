package session

import (
	"sync"
	"time"
)

// Scheduler decides when a preview recompute runs. The session hands it a
// closure after every parameter or baseline change; the closure always
// recomputes from the current baseline.
type Scheduler interface {
	Schedule(fn func())
	Stop()
}

// Immediate runs every recompute synchronously on the calling goroutine.
// This is the default and reproduces the reference behaviour exactly: one
// full recompute per change, nothing coalesced or cancelled.
type Immediate struct{}

func (Immediate) Schedule(fn func()) { fn() }
func (Immediate) Stop()              {}

// Debouncer coalesces bursts of changes into a single trailing recompute
// that runs delay after the last Schedule call, on a timer goroutine.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	stopped bool
}

// NewDebouncer creates a trailing debouncer.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule replaces any pending recompute with fn and restarts the timer.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

// Flush runs the pending recompute now, if there is one.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	fn := d.take()
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Stop cancels any pending recompute and ignores later ones.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = nil
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.take()
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// take must be called with mu held.
func (d *Debouncer) take() func() {
	fn := d.pending
	d.pending = nil
	return fn
}
