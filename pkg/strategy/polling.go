package strategy

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// DefaultPollingInterval is the polling interval used when none is set.
const DefaultPollingInterval = 1 * time.Second

// Polling calls Update on a fixed interval while started.
// The zero value polls every DefaultPollingInterval on the real clock.
type Polling struct {
	// Interval between updates. Zero selects DefaultPollingInterval.
	Interval time.Duration

	// Clock drives the ticker. Nil selects the real clock.
	Clock clock.Clock

	mu     sync.Mutex
	ticker *clock.Ticker
	done   chan struct{}
}

// NewPolling creates a polling strategy.
func NewPolling(interval time.Duration, clk clock.Clock) *Polling {
	return &Polling{Interval: interval, Clock: clk}
}

// Init does nothing.
func (p *Polling) Init(Target) {}

// Start begins polling t. It always reports true.
func (p *Polling) Start(t Target) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker != nil {
		return true
	}

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollingInterval
	}

	p.ticker = realClock(p.Clock).Ticker(interval)
	p.done = make(chan struct{})
	go p.loop(t, p.ticker.C, p.done)
	return true
}

// Stop ends polling. It reports whether a running ticker was cancelled.
// The polling goroutine exits without waiting for an in-flight Update.
func (p *Polling) Stop(Target) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticker == nil {
		return false
	}
	p.ticker.Stop()
	close(p.done)
	p.ticker = nil
	p.done = nil
	return true
}

// Running reports whether the ticker is active.
func (p *Polling) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ticker != nil
}

func (p *Polling) loop(t Target, ticks <-chan time.Time, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticks:
			// a tick may race with Stop
			select {
			case <-done:
				return
			default:
			}
			t.Update()
		}
	}
}
