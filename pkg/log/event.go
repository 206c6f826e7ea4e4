package log

import (
	"time"

	"github.com/vissense/vissense-go/pkg/visibility"
)

// Event represents a monitor trace event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// MonitorID uniquely identifies the monitor (UUID).
	MonitorID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Topic is the published topic name, if any.
	Topic string `cbor:"4,keyasint,omitempty"`

	// ElementID identifies the observed element, when the host knows one.
	ElementID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Sample      *SampleEvent      `cbor:"6,keyasint,omitempty"` // Visibility sample
	StateChange *StateChangeEvent `cbor:"7,keyasint,omitempty"` // Monitor/strategy lifecycle
}

// Category classifies the event type.
type Category uint8

const (
	// CategorySample indicates a visibility sample and the topics derived from it.
	CategorySample Category = 0
	// CategoryLifecycle indicates a monitor or strategy state change.
	CategoryLifecycle Category = 1
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategorySample:
		return "SAMPLE"
	case CategoryLifecycle:
		return "LIFECYCLE"
	default:
		return "UNKNOWN"
	}
}

// SampleEvent captures one visibility sample.
type SampleEvent struct {
	// Code is the sampled visibility code.
	Code visibility.Code `cbor:"1,keyasint"`

	// Percentage is the sampled visible percentage.
	Percentage float64 `cbor:"2,keyasint"`

	// PreviousCode is the code of the prior sample (nil for the first sample).
	PreviousCode *visibility.Code `cbor:"3,keyasint,omitempty"`

	// PreviousPercentage is the percentage of the prior sample.
	PreviousPercentage *float64 `cbor:"4,keyasint,omitempty"`

	// Retained indicates the cached state was kept because nothing changed.
	Retained bool `cbor:"5,keyasint,omitempty"`
}

// StateChangeEvent captures monitor and strategy lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityMonitor indicates a monitor lifecycle change.
	StateEntityMonitor StateEntity = 0
	// StateEntityStrategy indicates a strategy start, stop or swap.
	StateEntityStrategy StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityMonitor:
		return "MONITOR"
	case StateEntityStrategy:
		return "STRATEGY"
	default:
		return "UNKNOWN"
	}
}

// NewSampleEvent builds the trace payload for state. A nil state yields nil.
func NewSampleEvent(state *visibility.State, retained bool) *SampleEvent {
	if state == nil {
		return nil
	}
	s := &SampleEvent{
		Code:       state.Code,
		Percentage: state.Percentage,
		Retained:   retained,
	}
	if prev := state.Previous; prev != nil {
		code := prev.Code
		pct := prev.Percentage
		s.PreviousCode = &code
		s.PreviousPercentage = &pct
	}
	return s
}
