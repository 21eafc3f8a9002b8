// Package debounce provides a trailing-edge debouncer: a stream of values is
// collapsed to the most recent one, emitted once after a quiet interval with
// no new values. A stopped debouncer never emits.
package debounce

import (
	"sync"
	"time"
)

// DefaultInterval is the quiet period used when none is configured.
const DefaultInterval = 300 * time.Millisecond

// Debouncer holds the latest value from a burst of Set calls and invokes the
// emit callback once per settled burst. It is safe for concurrent use.
//
// The emit callback runs while the debouncer's lock is held, which is what
// guarantees that no emission can race past Stop. The callback must not call
// back into the Debouncer.
type Debouncer[T any] struct {
	mu       sync.Mutex
	interval time.Duration
	emit     func(T)

	timer      *time.Timer
	seq        uint64
	pending    T
	hasPending bool
	stopped    bool
}

// New creates a Debouncer that calls emit with the settled value.
// A non-positive interval falls back to DefaultInterval.
func New[T any](interval time.Duration, emit func(T)) *Debouncer[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Debouncer[T]{interval: interval, emit: emit}
}

// Set records a new value and restarts the quiet interval. Any value pending
// from an earlier Set in the same burst is superseded, not queued.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.seq++
	seq := d.seq
	d.pending = v
	d.hasPending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() { d.fire(seq) })
}

// fire emits the pending value if this timer still corresponds to the most
// recent Set. A stale timer (superseded burst) is a no-op.
func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || !d.hasPending || seq != d.seq {
		return
	}
	v := d.pending
	var zero T
	d.pending = zero
	d.hasPending = false
	d.emit(v)
}

// Flush emits the pending value immediately, if any.
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || !d.hasPending {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	v := d.pending
	var zero T
	d.pending = zero
	d.hasPending = false
	d.emit(v)
}

// Stop discards any pending value and prevents all future emissions.
// Once Stop returns, the emit callback will never be invoked again.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.hasPending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}
