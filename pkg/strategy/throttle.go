package strategy

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"golang.org/x/time/rate"
)

// Throttler limits how often fn runs.
//
// The first call in a quiet period runs fn immediately on the calling
// goroutine. Calls inside the window collapse into a single trailing call
// scheduled once for the end of the window, so fn runs at most once per wait
// under a steady stream of calls and the last event is never lost.
type Throttler struct {
	fn    func()
	wait  time.Duration
	clock clock.Clock

	mu      sync.Mutex
	limiter *rate.Limiter
	pending *clock.Timer
	gen     uint64
	lastRun time.Time
}

// NewThrottler creates a throttler that runs fn at most once per wait.
// A nil clk uses the real clock.
func NewThrottler(fn func(), wait time.Duration, clk clock.Clock) *Throttler {
	return &Throttler{
		fn:      fn,
		wait:    wait,
		clock:   realClock(clk),
		limiter: rate.NewLimiter(rate.Every(wait), 1),
	}
}

// Call requests a run of fn.
func (t *Throttler) Call() {
	t.mu.Lock()

	now := t.clock.Now()
	if t.limiter.AllowN(now, 1) {
		t.stopLocked()
		t.lastRun = now
		t.mu.Unlock()
		t.fn()
		return
	}

	// A scheduled trailing call already covers this one.
	if t.pending != nil {
		t.mu.Unlock()
		return
	}

	delay := t.lastRun.Add(t.wait).Sub(now)
	if delay < 0 {
		delay = 0
	}
	gen := t.gen
	t.pending = t.clock.AfterFunc(delay, func() { t.trailing(gen) })
	t.mu.Unlock()
}

func (t *Throttler) trailing(gen uint64) {
	t.mu.Lock()
	if gen != t.gen || t.pending == nil {
		t.mu.Unlock()
		return
	}
	t.pending = nil
	now := t.clock.Now()
	t.limiter.ReserveN(now, 1)
	t.lastRun = now
	t.mu.Unlock()

	t.fn()
}

// Pending reports whether a trailing call is scheduled.
func (t *Throttler) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// Cancel drops a scheduled trailing call. It reports whether one was pending.
func (t *Throttler) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stopLocked()
}

func (t *Throttler) stopLocked() bool {
	if t.pending == nil {
		return false
	}
	t.pending.Stop()
	t.pending = nil
	t.gen++
	return true
}
