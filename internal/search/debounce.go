// Package search implements the debounced store-name availability check.
// Calls issued within a quiet window are coalesced so only the last one
// fires, and every response carries a request sequence number: a result is
// applied only if it belongs to the latest issued request, so a stale
// response can never overwrite a newer one regardless of arrival order.
package search

import (
	"context"
	"sync"
	"time"
)

// CheckFunc performs the actual availability lookup.
type CheckFunc func(ctx context.Context, name string) (bool, error)

// Result is the outcome of an applied availability check.
type Result struct {
	Name      string
	Available bool
	Err       error
}

// Debouncer coalesces a burst of Check calls into a single lookup after a
// quiet window. At most one lookup is in flight per burst; results of
// superseded requests are discarded by sequence number.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	check  CheckFunc
	apply  func(Result)

	seq     uint64
	timer   *time.Timer
	pending string
}

// NewDebouncer creates a debouncer that calls apply with the result of the
// last check in each burst.
func NewDebouncer(window time.Duration, check CheckFunc, apply func(Result)) *Debouncer {
	return &Debouncer{
		window: window,
		check:  check,
		apply:  apply,
	}
}

// Check schedules an availability lookup for name, replacing any lookup still
// waiting out the quiet window.
func (d *Debouncer) Check(ctx context.Context, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	d.pending = name

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() {
		d.fire(ctx, seq, name)
	})
}

// Flush runs any pending lookup immediately. Mainly for tests and shutdown.
func (d *Debouncer) Flush(ctx context.Context) {
	d.mu.Lock()
	seq := d.seq
	name := d.pending
	timer := d.timer
	d.mu.Unlock()

	if timer != nil && timer.Stop() {
		d.fire(ctx, seq, name)
	}
}

func (d *Debouncer) fire(ctx context.Context, seq uint64, name string) {
	// A newer Check superseded this one while the timer was pending.
	if !d.latest(seq) {
		return
	}

	available, err := d.check(ctx, name)

	// Re-check: the lookup may have been superseded while in flight.
	if !d.latest(seq) {
		return
	}
	d.apply(Result{Name: name, Available: available, Err: err})
}

func (d *Debouncer) latest(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return seq == d.seq
}

// Checker answers availability requests synchronously for the HTTP proxy
// endpoint. Results are cached for the debounce window so a keystroke burst
// against the same name hits the backend once, and the sequence guard keeps
// an in-flight stale response from overwriting a fresher cache entry.
type Checker struct {
	mu     sync.Mutex
	window time.Duration
	check  CheckFunc

	seq   map[string]uint64
	cache map[string]cachedResult
}

type cachedResult struct {
	available bool
	at        time.Time
}

// NewChecker creates a synchronous checker with the given freshness window.
func NewChecker(window time.Duration, check CheckFunc) *Checker {
	return &Checker{
		window: window,
		check:  check,
		seq:    make(map[string]uint64),
		cache:  make(map[string]cachedResult),
	}
}

// Check returns the availability of name, serving a cached result when one is
// fresh within the window.
func (c *Checker) Check(ctx context.Context, name string) (bool, error) {
	c.mu.Lock()
	if cached, ok := c.cache[name]; ok && time.Since(cached.at) < c.window {
		c.mu.Unlock()
		return cached.available, nil
	}
	c.seq[name]++
	seq := c.seq[name]
	c.mu.Unlock()

	available, err := c.check(ctx, name)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	if seq == c.seq[name] {
		c.cache[name] = cachedResult{available: available, at: time.Now()}
	}
	c.mu.Unlock()
	return available, nil
}
