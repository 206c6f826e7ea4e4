package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to watch a monitor in the console.
type SlogAdapter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogAdapter creates a SlogAdapter that writes to logger at Debug level.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger, level: slog.LevelDebug}
}

// WithLevel returns a copy of the adapter that logs at level.
func (a *SlogAdapter) WithLevel(level slog.Level) *SlogAdapter {
	return &SlogAdapter{logger: a.logger, level: level}
}

// Log writes the event to the slog logger.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("monitor_id", event.MonitorID),
		slog.String("category", event.Category.String()),
	}

	if event.Topic != "" {
		attrs = append(attrs, slog.String("topic", event.Topic))
	}
	if event.ElementID != "" {
		attrs = append(attrs, slog.String("element", event.ElementID))
	}

	switch {
	case event.Sample != nil:
		attrs = append(attrs,
			slog.String("state", event.Sample.Code.String()),
			slog.Float64("percentage", event.Sample.Percentage),
		)
		if event.Sample.PreviousCode != nil {
			attrs = append(attrs, slog.String("old_state", event.Sample.PreviousCode.String()))
		}
		if event.Sample.PreviousPercentage != nil {
			attrs = append(attrs, slog.Float64("old_percentage", *event.Sample.PreviousPercentage))
		}
		if event.Sample.Retained {
			attrs = append(attrs, slog.Bool("retained", true))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	}

	a.logger.LogAttrs(context.Background(), a.level, "visibility", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
