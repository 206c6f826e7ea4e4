// Package commands implements the vissense-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vissense/vissense-go/pkg/log"
	"github.com/vissense/vissense-go/pkg/monitor"
	"github.com/vissense/vissense-go/pkg/visibility"
)

// FilterOptions holds the textual filter flags shared by view, export and filter.
type FilterOptions struct {
	MonitorID string
	ElementID string
	Category  string
	Topic     string
	State     string
	TimeStart string
	TimeEnd   string
}

// Build converts the options into a log.Filter.
func (o FilterOptions) Build() (log.Filter, error) {
	filter := log.Filter{
		MonitorID: o.MonitorID,
		ElementID: o.ElementID,
	}

	if o.Category != "" {
		c, err := parseCategory(o.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}

	if o.Topic != "" {
		t, err := monitor.ParseTopic(strings.ToLower(o.Topic))
		if err != nil {
			return filter, err
		}
		if t != monitor.TopicAny {
			filter.Topic = t.String()
		}
	}

	if o.State != "" {
		c, err := parseState(o.State)
		if err != nil {
			return filter, err
		}
		filter.Code = &c
	}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [mon:id] CATEGORY topic #element
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [mon:%s] %s", ts, shortenID(event.MonitorID), event.Category.String())
	if event.Topic != "" {
		fmt.Fprintf(w, " %s", event.Topic)
	}
	if event.ElementID != "" {
		fmt.Fprintf(w, " #%s", event.ElementID)
	}
	fmt.Fprintln(w)

	switch {
	case event.Sample != nil:
		formatSampleDetails(w, event.Sample)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of a monitor ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatSampleDetails writes sample-specific details.
func formatSampleDetails(w io.Writer, s *log.SampleEvent) {
	if s.PreviousCode != nil && s.PreviousPercentage != nil {
		fmt.Fprintf(w, "  %s (%s) -> %s (%s)\n",
			s.PreviousCode.String(), formatPercentage(*s.PreviousPercentage),
			s.Code.String(), formatPercentage(s.Percentage))
	} else {
		fmt.Fprintf(w, "  -> %s (%s)\n", s.Code.String(), formatPercentage(s.Percentage))
	}
	if s.Retained {
		fmt.Fprintln(w, "  Retained: cached state kept")
	}
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatPercentage formats a visible fraction as a percentage.
func formatPercentage(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "sample":
		return log.CategorySample, nil
	case "lifecycle":
		return log.CategoryLifecycle, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be sample or lifecycle)", s)
	}
}

// parseState parses a visibility state name (case-insensitive).
func parseState(s string) (visibility.Code, error) {
	for _, c := range []visibility.Code{visibility.Hidden, visibility.Visible, visibility.FullyVisible} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid state: %s (must be hidden, visible, or fullyvisible)", s)
}

// RunView executes the view command.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		formatEvent(output, event)
	}

	return nil
}
