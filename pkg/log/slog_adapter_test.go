package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/vissense/vissense-go/pkg/visibility"
)

func newJSONAdapter(buf *bytes.Buffer, level slog.Level) *SlogAdapter {
	handler := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return NewSlogAdapter(slog.New(handler))
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	if buf.Len() == 0 {
		t.Fatal("no output produced")
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestSlogAdapterLogsSampleEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := newJSONAdapter(&buf, slog.LevelDebug)

	prevCode := visibility.FullyVisible
	prevPct := 1.0
	adapter.Log(Event{
		Timestamp: time.Now(),
		MonitorID: "mon-123",
		Category:  CategorySample,
		Topic:     "visibilitychange",
		ElementID: "banner",
		Sample: &SampleEvent{
			Code:               visibility.Visible,
			Percentage:         0.5,
			PreviousCode:       &prevCode,
			PreviousPercentage: &prevPct,
		},
	})

	entry := decodeEntry(t, &buf)

	want := map[string]any{
		"msg":            "visibility",
		"monitor_id":     "mon-123",
		"category":       "SAMPLE",
		"topic":          "visibilitychange",
		"element":        "banner",
		"state":          "visible",
		"percentage":     0.5,
		"old_state":      "fullyvisible",
		"old_percentage": 1.0,
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s: got %v, want %v", k, entry[k], v)
		}
	}
	if _, ok := entry["retained"]; ok {
		t.Error("retained should be omitted when false")
	}
}

func TestSlogAdapterLogsStateChangeEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := newJSONAdapter(&buf, slog.LevelDebug)

	adapter.Log(Event{
		Timestamp: time.Now(),
		MonitorID: "mon-123",
		Category:  CategoryLifecycle,
		Topic:     "start",
		StateChange: &StateChangeEvent{
			Entity:   StateEntityMonitor,
			OldState: "UNSTARTED",
			NewState: "STARTED",
			Reason:   "async",
		},
	})

	entry := decodeEntry(t, &buf)

	if entry["entity"] != "MONITOR" {
		t.Errorf("entity: got %v, want MONITOR", entry["entity"])
	}
	if entry["old_state"] != "UNSTARTED" || entry["new_state"] != "STARTED" {
		t.Errorf("states: got %v -> %v", entry["old_state"], entry["new_state"])
	}
	if entry["reason"] != "async" {
		t.Errorf("reason: got %v, want async", entry["reason"])
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	adapter := newJSONAdapter(&buf, slog.LevelInfo)

	adapter.Log(Event{MonitorID: "mon-1"})
	if buf.Len() != 0 {
		t.Errorf("debug event written at info level: %s", buf.String())
	}

	adapter.WithLevel(slog.LevelInfo).Log(Event{MonitorID: "mon-1"})
	entry := decodeEntry(t, &buf)
	if entry["level"] != "INFO" {
		t.Errorf("level: got %v, want INFO", entry["level"])
	}
}
