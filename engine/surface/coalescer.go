package surface

import (
	"time"
)

const (
	// DefaultThrottle is the minimum spacing between leading calls.
	DefaultThrottle = 50 * time.Millisecond

	// DefaultDebounce is the delay of the trailing call after the last trigger.
	DefaultDebounce = 75 * time.Millisecond
)

// Clock is the part of a host a Coalescer needs: a monotonic clock and cancellable timers.
type Clock interface {
	Now() time.Duration
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

// Coalescer rate-limits a function. A trigger runs fn immediately when the previous immediate run
// is at least the throttle interval old, and always schedules one trailing run after the debounce
// delay, replacing any trailing run still pending.
type Coalescer struct {
	clock    Clock
	fn       func()
	throttle time.Duration
	debounce time.Duration

	last    time.Duration
	ran     bool
	gen     int
	pending func()
}

// NewCoalescer wraps fn with the default throttle and debounce intervals.
//
// Parameters:
//   - clock: the host clock and timer source
//   - fn: the function to rate-limit
//
// Returns:
//   - *Coalescer: the coalescer
func NewCoalescer(clock Clock, fn func()) *Coalescer {
	return NewCoalescerWithIntervals(clock, fn, DefaultThrottle, DefaultDebounce)
}

// NewCoalescerWithIntervals wraps fn with custom intervals.
func NewCoalescerWithIntervals(clock Clock, fn func(), throttle, debounce time.Duration) *Coalescer {
	return &Coalescer{clock: clock, fn: fn, throttle: throttle, debounce: debounce}
}

// Trigger requests a run of the wrapped function.
func (c *Coalescer) Trigger() {
	now := c.clock.Now()
	c.cancelPending()

	if !c.ran || now-c.last >= c.throttle {
		c.last = now
		c.ran = true
		c.fn()
	}

	c.gen++
	gen := c.gen
	c.pending = c.clock.AfterFunc(c.debounce, func() {
		if gen == c.gen {
			c.pending = nil
		}
		c.fn()
	})
}

// Cancel drops a pending trailing run.
func (c *Coalescer) Cancel() {
	c.cancelPending()
}

func (c *Coalescer) cancelPending() {
	if c.pending != nil {
		c.pending()
		c.pending = nil
	}
}
