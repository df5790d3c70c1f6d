package viewport

import (
	"sync"
	"time"
)

// DefaultSettle is the resize settling window.
const DefaultSettle = 150 * time.Millisecond

// Debouncer coalesces bursts of calls into one call of the most recent
// function, fired after the settling window has passed without a new call.
type Debouncer struct {
	mu      sync.Mutex
	settle  time.Duration
	timer   *time.Timer
	pending func()
}

// NewDebouncer creates a debouncer with the given settling window.
func NewDebouncer(settle time.Duration) *Debouncer {
	return &Debouncer{settle: settle}
}

// Call schedules fn, replacing any call still waiting.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.settle, d.fire)
}

// Flush runs the pending call immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	d.fire()
}

// Stop discards any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}

// Pending reports whether a call is waiting.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}
