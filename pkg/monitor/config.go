package monitor

import (
	"log/slog"

	"github.com/facebookgo/clock"

	"github.com/vissense/vissense-go/pkg/log"
	"github.com/vissense/vissense-go/pkg/strategy"
)

// SwapEventsSuppressed documents the strategy swap policy: Use never
// publishes TopicStop or TopicStart while replacing a strategy.
const SwapEventsSuppressed = true

// Config configures a Monitor.
type Config struct {
	// Strategy lists the strategies that drive sampling. They are combined
	// into one composite strategy. Nil selects polling plus event-driven
	// sampling against the object's host; an empty non-nil slice disables
	// automatic sampling.
	Strategy []strategy.Strategy

	// Async delivers events on the monitor's queue instead of synchronously.
	Async bool

	// Start starts the monitor at construction.
	Start bool

	// Listener shortcuts, registered at construction.
	OnStart            Listener
	OnStop             Listener
	OnUpdate           Listener
	OnHidden           Listener
	OnVisible          Listener
	OnFullyVisible     Listener
	OnPercentageChange Listener
	OnVisibilityChange Listener

	// Any receives every topic.
	Any Listener

	// Logger for operational debug output. Nil disables it.
	Logger *slog.Logger

	// Trace receives a structured event for every sample and lifecycle
	// change. Nil disables tracing.
	Trace log.Logger

	// Clock drives the default strategies and trace timestamps.
	// Nil selects the real clock.
	Clock clock.Clock
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{}
}

// listeners returns the shortcut listeners keyed by topic, in registration order.
func (c Config) listeners() []struct {
	topic Topic
	fn    Listener
} {
	return []struct {
		topic Topic
		fn    Listener
	}{
		{TopicStart, c.OnStart},
		{TopicStop, c.OnStop},
		{TopicUpdate, c.OnUpdate},
		{TopicHidden, c.OnHidden},
		{TopicVisible, c.OnVisible},
		{TopicFullyVisible, c.OnFullyVisible},
		{TopicPercentageChange, c.OnPercentageChange},
		{TopicVisibilityChange, c.OnVisibilityChange},
		{TopicAny, c.Any},
	}
}
