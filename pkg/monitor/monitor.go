package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"

	"github.com/vissense/vissense-go/pkg/log"
	"github.com/vissense/vissense-go/pkg/pubsub"
	"github.com/vissense/vissense-go/pkg/sched"
	"github.com/vissense/vissense-go/pkg/strategy"
	"github.com/vissense/vissense-go/pkg/visibility"
)

// ErrNilObject is returned when a monitor is created without an object.
var ErrNilObject = errors.New("visibility object is required")

// Lifecycle state names used in traces.
const (
	StateUnstarted = "UNSTARTED"
	StateStarted   = "STARTED"
	StateStopped   = "STOPPED"
)

// Event is the payload delivered to listeners.
// State and Previous are shared between listeners and must not be modified.
type Event struct {
	// Topic is the published topic.
	Topic Topic

	// Monitor that published the event.
	Monitor *Monitor

	// State is the monitor's state when the event was published.
	// It is nil for a stop event on a monitor that never sampled.
	State *visibility.State

	// Previous is State.Previous, nil for the first sample.
	Previous *visibility.State

	// Percentage is State.Percentage.
	Percentage float64

	// OldPercentage is Previous.Percentage, zero for the first sample.
	OldPercentage float64
}

// Listener receives monitor events.
type Listener func(ev Event)

// Monitor samples the visibility of one object over time and publishes
// change events. It is safe for concurrent use; listeners run outside the
// monitor's lock and may call back into the monitor.
type Monitor struct {
	mu sync.Mutex

	id     uuid.UUID
	obj    *visibility.Object
	config Config
	clock  clock.Clock
	logger *slog.Logger
	trace  log.Logger

	// Cached state, nil until the first sample
	state *visibility.State

	started     bool
	stopping    bool
	everStarted bool
	strategy    strategy.Strategy

	// An Update is sampling or publishing; a call arriving meanwhile sets
	// updateAgain instead of running alongside it
	updating    bool
	updateAgain bool

	events *pubsub.PubSub[Topic, Event]
	queue  *sched.Queue

	// Pending StartAsync, invalidated by bumping asyncGen
	cancelAsync sched.Cancel
	asyncGen    uint64
}

// New creates a monitor with the default configuration.
func New(obj *visibility.Object) (*Monitor, error) {
	return NewWithConfig(obj, DefaultConfig())
}

// NewWithConfig creates a monitor for obj.
func NewWithConfig(obj *visibility.Object, config Config) (*Monitor, error) {
	if obj == nil {
		return nil, fmt.Errorf("monitor: %w", ErrNilObject)
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.New()
	}

	var s strategy.Strategy
	if config.Strategy == nil {
		s = strategy.Default(obj.Host(), clk)
	} else {
		s = strategy.Composite(config.Strategy...)
	}

	queue := sched.NewQueue()
	m := &Monitor{
		id:       uuid.New(),
		obj:      obj,
		config:   config,
		clock:    clk,
		logger:   config.Logger,
		trace:    config.Trace,
		strategy: s,
		queue:    queue,
		events: pubsub.New[Topic, Event](pubsub.Config[Topic]{
			Async:    config.Async,
			AnyTopic: TopicAny,
			Queue:    queue,
		}),
	}

	s.Init(m)

	for _, l := range config.listeners() {
		m.On(l.topic, l.fn)
	}

	if config.Start {
		m.Start()
	}
	return m, nil
}

// ID returns the monitor's unique identifier.
func (m *Monitor) ID() string {
	return m.id.String()
}

// VisObj returns the observed visibility object.
func (m *Monitor) VisObj() *visibility.Object {
	return m.obj
}

// State returns the cached state, or nil before the first sample.
// The same instance is returned until a sample produces a new state.
func (m *Monitor) State() *visibility.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Started reports whether the monitor is started.
func (m *Monitor) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Strategy returns the active strategy.
func (m *Monitor) Strategy() strategy.Strategy {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.strategy
}

// Queue returns the queue used for async delivery and StartAsync.
func (m *Monitor) Queue() *sched.Queue {
	return m.queue
}

// On registers fn for topic. Unknown topics and nil listeners register
// nothing and return an unregister that reports false.
func (m *Monitor) On(topic Topic, fn Listener) pubsub.Unregister {
	if !topic.Valid() || fn == nil {
		return pubsub.Noop
	}
	return m.events.On(topic, func(_ Topic, ev Event) {
		fn(ev)
	})
}

// Start samples once, publishes TopicStart and starts the strategy.
// It does nothing if the monitor is already started. A pending StartAsync
// is cancelled.
func (m *Monitor) Start() {
	m.mu.Lock()
	m.cancelAsyncLocked()
	started := m.started
	m.mu.Unlock()

	if started {
		return
	}
	m.start("")
}

// StartAsync defers Start to the monitor's queue. A later Start, StartAsync
// or Stop cancels it.
func (m *Monitor) StartAsync() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelAsyncLocked()
	gen := m.asyncGen
	m.cancelAsync = m.queue.Defer(func() {
		m.mu.Lock()
		if gen != m.asyncGen {
			m.mu.Unlock()
			return
		}
		m.cancelAsync = nil
		started := m.started
		m.mu.Unlock()

		if !started {
			m.start("async")
		}
	})
}

// cancelAsyncLocked drops a pending StartAsync. Caller holds m.mu.
func (m *Monitor) cancelAsyncLocked() {
	m.asyncGen++
	if m.cancelAsync != nil {
		m.cancelAsync()
		m.cancelAsync = nil
	}
}

func (m *Monitor) start(reason string) {
	m.Update()

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	old := StateUnstarted
	if m.everStarted {
		old = StateStopped
	}
	state := m.state
	m.mu.Unlock()

	m.publish(TopicStart, state)

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.everStarted = true
	s := m.strategy
	m.mu.Unlock()

	running := s.Start(m)

	m.traceLifecycle(TopicStart, log.StateEntityMonitor, old, StateStarted, reason)
	m.traceLifecycle(0, log.StateEntityStrategy, "", strategyState(running), "")
	m.debugLog("monitor started", "id", m.ID(), "strategy_running", running)
}

// Stop stops the strategy and publishes TopicStop. The monitor still reports
// Started while stop listeners run. The last state stays available through
// State. A pending StartAsync is cancelled.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.cancelAsyncLocked()
	if !m.started || m.stopping {
		m.mu.Unlock()
		return
	}
	m.stopping = true
	s := m.strategy
	state := m.state
	m.mu.Unlock()

	stopped := s.Stop(m)
	m.publish(TopicStop, state)

	m.mu.Lock()
	m.started = false
	m.stopping = false
	m.mu.Unlock()

	m.traceLifecycle(TopicStop, log.StateEntityMonitor, StateStarted, StateStopped, "")
	m.debugLog("monitor stopped", "id", m.ID(), "strategy_stopped", stopped)
}

// Use replaces the strategy. The old strategy is stopped, the new one is
// initialized, the monitor samples once, and the new strategy is started if
// the monitor is started. No start or stop events are published.
// A nil s installs strategy.Noop.
func (m *Monitor) Use(s strategy.Strategy) {
	if s == nil {
		s = strategy.Noop{}
	}

	m.mu.Lock()
	old := m.strategy
	m.strategy = s
	started := m.started
	m.mu.Unlock()

	old.Stop(m)
	s.Init(m)
	m.Update()

	running := false
	if started {
		running = s.Start(m)
	}

	m.traceLifecycle(0, log.StateEntityStrategy, fmt.Sprintf("%T", old), fmt.Sprintf("%T", s), "use")
	m.debugLog("strategy replaced", "id", m.ID(), "strategy", fmt.Sprintf("%T", s), "running", running)
}

// Update samples the object and publishes the derived events in order:
// update, percentagechange, visibilitychange, then visible, fullyvisible
// and hidden as they apply.
//
// Updates never interleave. A call made while another Update is running,
// from another goroutine or from a listener, returns at once and the running
// Update samples again after its events are published.
func (m *Monitor) Update() {
	m.mu.Lock()
	if m.updating {
		m.updateAgain = true
		m.mu.Unlock()
		return
	}
	m.updating = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.updating = false
		m.updateAgain = false
		m.mu.Unlock()
	}()

	for {
		m.updateOnce()

		m.mu.Lock()
		again := m.updateAgain
		m.updateAgain = false
		m.mu.Unlock()
		if !again {
			return
		}
	}
}

func (m *Monitor) updateOnce() {
	sample := m.obj.State()

	m.mu.Lock()
	next, retained := nextState(sample, m.state)
	m.state = next
	m.mu.Unlock()

	prev := next.Previous

	m.traceSample(TopicUpdate, next, retained)
	m.publish(TopicUpdate, next)

	if prev == nil || next.Percentage != prev.Percentage {
		m.traceSample(TopicPercentageChange, next, retained)
		m.publish(TopicPercentageChange, next)
	}

	if prev != nil && next.Code == prev.Code {
		return
	}

	m.traceSample(TopicVisibilityChange, next, retained)
	m.publish(TopicVisibilityChange, next)

	if next.Visible() && !prev.Visible() {
		m.traceSample(TopicVisible, next, retained)
		m.publish(TopicVisible, next)
	}
	if next.FullyVisible() {
		m.traceSample(TopicFullyVisible, next, retained)
		m.publish(TopicFullyVisible, next)
	}
	if next.Hidden() {
		m.traceSample(TopicHidden, next, retained)
		m.publish(TopicHidden, next)
	}
}

// nextState derives the new cached state from a fresh sample. The cached
// state is kept when the percentage held steady over the last two samples.
func nextState(sample, cached *visibility.State) (*visibility.State, bool) {
	if cached != nil && cached.Previous != nil &&
		sample.Percentage == cached.Percentage &&
		cached.Percentage == cached.Previous.Percentage {
		return cached, true
	}
	return visibility.NewState(sample.Code, sample.Percentage, cached), false
}

func (m *Monitor) publish(topic Topic, state *visibility.State) {
	ev := Event{
		Topic:   topic,
		Monitor: m,
		State:   state,
	}
	if state != nil {
		ev.Previous = state.Previous
		ev.Percentage = state.Percentage
		if state.Previous != nil {
			ev.OldPercentage = state.Previous.Percentage
		}
	}
	m.events.Publish(topic, ev)
}

func (m *Monitor) traceSample(topic Topic, state *visibility.State, retained bool) {
	if m.trace == nil {
		return
	}
	m.trace.Log(log.Event{
		Timestamp: m.clock.Now(),
		MonitorID: m.ID(),
		Category:  log.CategorySample,
		Topic:     topic.String(),
		ElementID: m.elementID(),
		Sample:    log.NewSampleEvent(state, retained),
	})
}

func (m *Monitor) traceLifecycle(topic Topic, entity log.StateEntity, oldState, newState, reason string) {
	if m.trace == nil {
		return
	}
	ev := log.Event{
		Timestamp: m.clock.Now(),
		MonitorID: m.ID(),
		Category:  log.CategoryLifecycle,
		ElementID: m.elementID(),
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
	if topic != TopicAny {
		ev.Topic = topic.String()
	}
	m.trace.Log(ev)
}

// elementID returns the element's ID when the element exposes one.
func (m *Monitor) elementID() string {
	if el, ok := m.obj.Element().(interface{ ID() string }); ok {
		return el.ID()
	}
	return ""
}

func strategyState(running bool) string {
	if running {
		return "RUNNING"
	}
	return "IDLE"
}

// debugLog logs at debug level if a logger is configured.
func (m *Monitor) debugLog(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

// Compile-time interface satisfaction check.
var _ strategy.Target = (*Monitor)(nil)
