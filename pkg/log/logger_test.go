package log

import (
	"testing"
	"time"

	"github.com/vissense/vissense-go/pkg/visibility"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp: time.Now(),
		MonitorID: "mon-1",
		Category:  CategorySample,
	}

	// Test with nil payloads
	logger.Log(event)

	event.Sample = &SampleEvent{Code: visibility.Visible, Percentage: 0.5}
	logger.Log(event)

	event.Sample = nil
	event.StateChange = &StateChangeEvent{Entity: StateEntityMonitor, NewState: "STARTED"}
	logger.Log(event)
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}

func TestLoggerFuncReceivesEvents(t *testing.T) {
	var topics []string
	var logger Logger = LoggerFunc(func(ev Event) { topics = append(topics, ev.Topic) })

	logger.Log(Event{Category: CategorySample, Topic: "update"})
	logger.Log(Event{Category: CategoryLifecycle, Topic: "stop"})

	if len(topics) != 2 || topics[0] != "update" || topics[1] != "stop" {
		t.Errorf("topics = %v, want [update stop]", topics)
	}
}
