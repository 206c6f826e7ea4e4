// Package strategy provides the policies that decide when a monitor samples
// visibility.
//
// A Strategy is bound to a Target, typically a monitor, and calls its Update
// method on its own schedule: on a fixed interval (Polling), on viewport and
// page-visibility events (Event), or both (Composite).
package strategy

import (
	"github.com/facebookgo/clock"

	"github.com/vissense/vissense-go/pkg/env"
)

// Target is sampled by a strategy.
type Target interface {
	Update()
}

// Strategy schedules Update calls on a Target.
//
// Start reports whether the strategy is running after the call. Stop reports
// whether the call stopped a running strategy. Both must be idempotent.
type Strategy interface {
	Init(t Target)
	Start(t Target) bool
	Stop(t Target) bool
}

// Noop never calls Update. The zero value is ready to use.
type Noop struct{}

// Init does nothing.
func (Noop) Init(Target) {}

// Start does nothing and reports false.
func (Noop) Start(Target) bool { return false }

// Stop does nothing and reports false.
func (Noop) Stop(Target) bool { return false }

// CompositeStrategy fans every call out to its children in order.
type CompositeStrategy struct {
	children []Strategy
}

// Composite combines strategies. Nil children are skipped.
func Composite(children ...Strategy) *CompositeStrategy {
	c := &CompositeStrategy{children: make([]Strategy, 0, len(children))}
	for _, s := range children {
		if s != nil {
			c.children = append(c.children, s)
		}
	}
	return c
}

// Children returns the child strategies.
func (c *CompositeStrategy) Children() []Strategy {
	return append([]Strategy(nil), c.children...)
}

// Init initializes every child.
func (c *CompositeStrategy) Init(t Target) {
	for _, s := range c.children {
		s.Init(t)
	}
}

// Start starts every child. It reports true if any child reported true; the
// aggregate says nothing about individual children.
func (c *CompositeStrategy) Start(t Target) bool {
	started := false
	for _, s := range c.children {
		if s.Start(t) {
			started = true
		}
	}
	return started
}

// Stop stops every child. It reports true if any child reported true.
func (c *CompositeStrategy) Stop(t Target) bool {
	stopped := false
	for _, s := range c.children {
		if s.Stop(t) {
			stopped = true
		}
	}
	return stopped
}

// Default returns the standard strategy for host: polling at the default
// interval combined with event-driven sampling at the default throttle.
// A nil clk uses the real clock.
func Default(host env.Host, clk clock.Clock) Strategy {
	return Composite(
		&Polling{Clock: clk},
		&Event{Events: host, Page: host, Clock: clk},
	)
}

// realClock returns clk, or the real clock when clk is nil.
func realClock(clk clock.Clock) clock.Clock {
	if clk == nil {
		return clock.New()
	}
	return clk
}

// Compile-time interface satisfaction checks.
var (
	_ Strategy = Noop{}
	_ Strategy = (*CompositeStrategy)(nil)
	_ Strategy = (*Polling)(nil)
	_ Strategy = (*Event)(nil)
)
