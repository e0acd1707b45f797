package browse

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDebounceDelay is how long search input must stay unchanged
const DefaultDebounceDelay = 500 * time.Millisecond

// Debouncer emits a value only after it has been stable for the full delay.
// Every Push restarts the timer; superseded timers never emit.
type Debouncer[T any] struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	delay   time.Duration
	emit    func(T)
	timer   clockwork.Timer
	gen     uint64
	stopped bool
}

// NewDebouncer creates a trailing-edge debouncer
func NewDebouncer[T any](clock clockwork.Clock, delay time.Duration, emit func(T)) *Debouncer[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer[T]{
		clock: clock,
		delay: delay,
		emit:  emit,
	}
}

// Push records a new input value and restarts the quiet period
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.cancelLocked()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.fire(gen, v)
	})
}

// Cancel drops the pending value, if any, and reports whether there was one
func (d *Debouncer[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.timer != nil
	d.cancelLocked()
	return pending
}

// Pending reports whether a value is waiting for its quiet period to end
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any outstanding timer. Nothing is emitted afterwards.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.stopped = true
}

// cancelLocked bumps the generation so an already-fired callback is ignored
func (d *Debouncer[T]) cancelLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.emit(v)
}
