package strategy

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/vissense/vissense-go/pkg/env"
)

// DefaultThrottle is the event throttle window used when none is set.
const DefaultThrottle = 50 * time.Millisecond

// Event calls Update when the viewport is resized or scrolled, on touch
// moves, and when the page visibility changes. Bursts are throttled.
type Event struct {
	// Throttle is the minimum time between updates. Zero selects DefaultThrottle.
	Throttle time.Duration

	// Debounce overrides Throttle when positive.
	Debounce time.Duration

	// Events delivers viewport events. Nil disables them.
	Events env.EventSource

	// Page delivers page visibility changes. Nil disables them.
	Page env.PageVisibility

	// Clock drives the throttle. Nil selects the real clock.
	Clock clock.Clock

	mu        sync.Mutex
	throttler *Throttler
	remove    []func()
}

// NewEvent creates an event strategy bound to host.
func NewEvent(host env.Host, throttle time.Duration, clk clock.Clock) *Event {
	return &Event{Throttle: throttle, Events: host, Page: host, Clock: clk}
}

// Init does nothing.
func (e *Event) Init(Target) {}

// Window returns the effective throttle window.
func (e *Event) Window() time.Duration {
	if e.Debounce > 0 {
		return e.Debounce
	}
	if e.Throttle > 0 {
		return e.Throttle
	}
	return DefaultThrottle
}

// Start subscribes to host events. It always reports true.
func (e *Event) Start(t Target) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.throttler != nil {
		return true
	}

	th := NewThrottler(t.Update, e.Window(), e.Clock)
	e.throttler = th

	if e.Events != nil {
		for _, name := range env.ViewportEvents {
			e.remove = append(e.remove, e.Events.AddListener(name, th.Call))
		}
	}
	if e.Page != nil {
		e.remove = append(e.remove, e.Page.OnChange(th.Call))
	}
	return true
}

// Stop removes every subscription and drops a pending trailing update.
// It reports whether the strategy was running.
func (e *Event) Stop(Target) bool {
	e.mu.Lock()
	th := e.throttler
	remove := e.remove
	e.throttler = nil
	e.remove = nil
	e.mu.Unlock()

	if th == nil {
		return false
	}
	for _, fn := range remove {
		fn()
	}
	th.Cancel()
	return true
}

// Running reports whether the strategy is subscribed.
func (e *Event) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.throttler != nil
}
