// Package debounce coalesces rapid triggers into a single delayed run.
//
// The schedule pipeline itself is pure; a UI adapter wraps its
// recompute call in a Debouncer so that a burst of keystrokes results
// in one filter/sort/project pass once input goes quiet.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays execution of a function until no new trigger has
// arrived for the configured quiescence interval. Triggering again
// before the interval elapses cancels the pending run and restarts the
// clock.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New builds a Debouncer with the given quiescence delay.
func New(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the quiescence delay, replacing
// any previously pending run. fn executes on a timer goroutine.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Flush runs a pending fn immediately, if any, instead of waiting out
// the delay.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	timer := d.timer
	d.timer = nil
	d.mu.Unlock()

	if timer != nil && timer.Stop() {
		// Stop returned true, so the callback has not fired; the
		// caller expects it to run exactly once.
		timer.Reset(0)
	}
}

// Stop cancels any pending run and rejects future triggers.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
