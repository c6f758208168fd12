package watch

import (
	"sync"
	"time"
)

// Debouncer turns a burst of triggers into a single deferred call. The
// registry commit produces several filesystem events per rewrite (create,
// write, rename), and editors save in their own multi-step patterns; only
// the last trigger of a burst should cause a reload.
type Debouncer struct {
	quiet time.Duration
	fire  func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a debouncer that calls fire once the quiet period
// elapses without a new trigger.
func NewDebouncer(quiet time.Duration, fire func()) *Debouncer {
	return &Debouncer{quiet: quiet, fire: fire}
}

// Trigger arms (or re-arms) the quiet period timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

// Stop cancels a pending call, if any. Safe to call multiple times.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
