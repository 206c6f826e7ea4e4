package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vissense/vissense-go/pkg/log"
	"github.com/vissense/vissense-go/pkg/monitor"
	"github.com/vissense/vissense-go/pkg/visibility"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	EventsByTopic    map[string]int
	SamplesByState   map[visibility.Code]int
	Retained         int
	Truncated        bool
	Monitors         map[string]*MonitorStats
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// MonitorStats holds statistics for a single monitor.
type MonitorStats struct {
	FirstSeen   time.Time
	LastSeen    time.Time
	Events      int
	ElementID   string
	Updates     int
	LastState   string
	LastPercent float64
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		EventsByTopic:    make(map[string]int),
		SamplesByState:   make(map[visibility.Code]int),
		Monitors:         make(map[string]*MonitorStats),
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, log.ErrTruncated) {
			stats.Truncated = true
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++
	if event.Topic != "" {
		s.EventsByTopic[event.Topic]++
	}

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	mon, ok := s.Monitors[event.MonitorID]
	if !ok {
		mon = &MonitorStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Monitors[event.MonitorID] = mon
	}
	mon.Events++
	if event.Timestamp.After(mon.LastSeen) {
		mon.LastSeen = event.Timestamp
	}
	if event.ElementID != "" && mon.ElementID == "" {
		mon.ElementID = event.ElementID
	}

	// One update event is traced per sample; the derived topics repeat it.
	if event.Sample != nil && event.Topic == monitor.TopicUpdate.String() {
		s.SamplesByState[event.Sample.Code]++
		if event.Sample.Retained {
			s.Retained++
		}
		mon.Updates++
		mon.LastState = event.Sample.Code.String()
		mon.LastPercent = event.Sample.Percentage
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== VisSense Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	if stats.Truncated {
		fmt.Fprintln(w, "Warning: trace ends inside an event; the partial event was skipped")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategorySample, log.CategoryLifecycle} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Topic:")
	for _, topic := range monitor.Topics() {
		if count := stats.EventsByTopic[topic.String()]; count > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", topic.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Samples by State:")
	for _, code := range []visibility.Code{visibility.Hidden, visibility.Visible, visibility.FullyVisible} {
		if count := stats.SamplesByState[code]; count > 0 {
			fmt.Fprintf(w, "  %-18s %d\n", code.String()+":", count)
		}
	}
	if stats.Retained > 0 {
		fmt.Fprintf(w, "  %-18s %d\n", "retained:", stats.Retained)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Monitors: %d\n", len(stats.Monitors))
	if len(stats.Monitors) == 0 {
		return
	}

	type monInfo struct {
		id    string
		stats *MonitorStats
	}
	mons := make([]monInfo, 0, len(stats.Monitors))
	for id, ms := range stats.Monitors {
		mons = append(mons, monInfo{id, ms})
	}
	sort.Slice(mons, func(i, j int) bool {
		return mons[i].stats.FirstSeen.Before(mons[j].stats.FirstSeen)
	})

	fmt.Fprintln(w)
	for _, m := range mons {
		duration := m.stats.LastSeen.Sub(m.stats.FirstSeen).Round(time.Millisecond)
		fmt.Fprintf(w, "  [%s] %d events, %d samples, duration %s\n", shortenID(m.id), m.stats.Events, m.stats.Updates, duration)
		if m.stats.ElementID != "" {
			fmt.Fprintf(w, "           Element: %s\n", m.stats.ElementID)
		}
		if m.stats.LastState != "" {
			fmt.Fprintf(w, "           Last: %s (%s)\n", m.stats.LastState, formatPercentage(m.stats.LastPercent))
		}
	}
}
