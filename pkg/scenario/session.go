package scenario

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/facebookgo/clock"

	"github.com/vissense/vissense-go/pkg/env"
	"github.com/vissense/vissense-go/pkg/log"
	"github.com/vissense/vissense-go/pkg/monitor"
	"github.com/vissense/vissense-go/pkg/strategy"
	"github.com/vissense/vissense-go/pkg/visibility"
)

// Session errors.
var (
	ErrExpectationFailed = errors.New("expectation failed")
	ErrClockNotMock      = errors.New("advance requires a mock clock")
)

// Action names.
const (
	ActionMove       = "move"
	ActionResize     = "resize"
	ActionDisplay    = "display"
	ActionVisibility = "visibility"
	ActionRemove     = "remove"
	ActionScroll     = "scroll"
	ActionScrollBy   = "scroll_by"
	ActionViewport   = "viewport"
	ActionPageHidden = "page_hidden"
	ActionDispatch   = "dispatch"
	ActionUpdate     = "update"
	ActionStart      = "start"
	ActionStartAsync = "start_async"
	ActionStop       = "stop"
	ActionAdvance    = "advance"
)

type actionSpec struct {
	needsElement bool
	needsValue   bool
	run          func(s *Session, step *Step) error
}

var actions = map[string]actionSpec{
	ActionMove: {needsElement: true, run: func(s *Session, st *Step) error {
		return s.window.Move(st.Element, st.Top, st.Left)
	}},
	ActionResize: {needsElement: true, run: func(s *Session, st *Step) error {
		return s.window.Resize(st.Element, st.Width, st.Height)
	}},
	ActionDisplay: {needsElement: true, needsValue: true, run: func(s *Session, st *Step) error {
		return s.window.SetDisplay(st.Element, st.Value)
	}},
	ActionVisibility: {needsElement: true, needsValue: true, run: func(s *Session, st *Step) error {
		return s.window.SetVisibility(st.Element, st.Value)
	}},
	ActionRemove: {needsElement: true, run: func(s *Session, st *Step) error {
		return s.window.Remove(st.Element)
	}},
	ActionScroll: {run: func(s *Session, st *Step) error {
		s.window.ScrollTo(st.X, st.Y)
		return nil
	}},
	ActionScrollBy: {run: func(s *Session, st *Step) error {
		s.window.ScrollBy(st.X, st.Y)
		return nil
	}},
	ActionViewport: {run: func(s *Session, st *Step) error {
		return s.window.SetViewport(st.Width, st.Height)
	}},
	ActionPageHidden: {run: func(s *Session, st *Step) error {
		s.window.SetHidden(st.Hidden)
		return nil
	}},
	ActionDispatch: {needsValue: true, run: func(s *Session, st *Step) error {
		s.window.Dispatch(env.EventName(st.Value))
		return nil
	}},
	ActionUpdate: {run: func(s *Session, _ *Step) error {
		s.monitor.Update()
		return nil
	}},
	ActionStart: {run: func(s *Session, _ *Step) error {
		s.monitor.Start()
		return nil
	}},
	ActionStartAsync: {run: func(s *Session, _ *Step) error {
		s.monitor.StartAsync()
		s.monitor.Queue().Wait()
		return nil
	}},
	ActionStop: {run: func(s *Session, _ *Step) error {
		s.monitor.Stop()
		return nil
	}},
	ActionAdvance: {run: func(s *Session, st *Step) error {
		mock, ok := s.clock.(*clock.Mock)
		if !ok {
			return ErrClockNotMock
		}
		d, err := time.ParseDuration(st.Duration)
		if err != nil {
			return err
		}
		mock.Add(d)
		return nil
	}},
}

// Actions returns the known action names, sorted.
func Actions() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Config configures sessions and runners.
type Config struct {
	// Clock drives strategies and advance steps. Nil selects a new mock
	// clock, which makes advance steps deterministic.
	Clock clock.Clock

	// Logger for operational debug output. Nil disables it.
	Logger *slog.Logger

	// Trace receives the monitor's trace events. Nil disables tracing.
	Trace log.Logger

	// Observers are called with the monitor before it starts, for example to
	// attach metrics or a stream hub.
	Observers []func(m *monitor.Monitor)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{}
}

// StepResult is the outcome of one step.
type StepResult struct {
	// Index is the 0-based step index.
	Index int

	// Step is the executed step.
	Step *Step

	// Events are the topics published during the step, in order.
	Events []string

	// State is the monitor's state name after the step.
	State string

	// Percentage is the monitor's percentage after the step.
	Percentage float64

	// Started is the monitor's started flag after the step.
	Started bool

	// Passed is true if the action succeeded and every expectation held.
	Passed bool

	// Error describes the failure.
	Error error
}

// Session is a live simulation of one scenario: a window, one observed
// element and its monitor.
type Session struct {
	scenario *Scenario
	window   *env.Window
	clock    clock.Clock
	logger   *slog.Logger
	monitor  *monitor.Monitor

	mu     sync.Mutex
	events []string
}

// NewSession builds the window and monitor described by sc. Steps are not
// run. The monitor is started when sc.Monitor.Start is set.
func NewSession(sc *Scenario, config Config) (*Session, error) {
	if err := sc.ValidateSetup(); err != nil {
		return nil, err
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.NewMock()
	}

	w := env.NewWindow(sc.Viewport.Width, sc.Viewport.Height)
	for _, el := range sc.Elements {
		if _, err := w.CreateElement(el.ID, el.Parent, env.NewRect(el.Top, el.Left, el.Width, el.Height)); err != nil {
			return nil, fmt.Errorf("create element %s: %w", el.ID, err)
		}
		if el.Display != "" {
			_ = w.SetDisplay(el.ID, el.Display)
		}
		if el.Visibility != "" {
			_ = w.SetVisibility(el.ID, el.Visibility)
		}
	}

	objCfg := visibility.DefaultConfig()
	objCfg.HiddenThreshold = sc.Monitor.Hidden
	if sc.Monitor.FullyVisible > 0 {
		objCfg.FullyVisibleThreshold = sc.Monitor.FullyVisible
	}
	obj, err := visibility.NewWithConfig(w.Element(sc.Monitor.Element), w, objCfg)
	if err != nil {
		return nil, fmt.Errorf("observe %s: %w", sc.Monitor.Element, err)
	}

	s := &Session{
		scenario: sc,
		window:   w,
		clock:    clk,
		logger:   config.Logger,
	}

	monCfg := monitor.DefaultConfig()
	monCfg.Strategy = buildStrategies(sc.Monitor, w, clk)
	monCfg.Any = s.record
	monCfg.Logger = config.Logger
	monCfg.Trace = config.Trace
	monCfg.Clock = clk

	s.monitor, err = monitor.NewWithConfig(obj, monCfg)
	if err != nil {
		return nil, err
	}
	for _, observe := range config.Observers {
		if observe != nil {
			observe(s.monitor)
		}
	}

	if sc.Monitor.Start {
		s.monitor.Start()
	}
	return s, nil
}

func buildStrategies(ms MonitorSpec, w *env.Window, clk clock.Clock) []strategy.Strategy {
	// ValidateSetup has already checked both durations.
	interval, _ := time.ParseDuration(orZero(ms.Interval))
	throttle, _ := time.ParseDuration(orZero(ms.Throttle))

	switch ms.Strategy {
	case StrategyPolling:
		return []strategy.Strategy{strategy.NewPolling(interval, clk)}
	case StrategyEvent:
		return []strategy.Strategy{strategy.NewEvent(w, throttle, clk)}
	case StrategyDefault:
		return []strategy.Strategy{strategy.NewPolling(interval, clk), strategy.NewEvent(w, throttle, clk)}
	default:
		return []strategy.Strategy{}
	}
}

func orZero(d string) string {
	if d == "" {
		return "0s"
	}
	return d
}

func (s *Session) record(ev monitor.Event) {
	s.mu.Lock()
	s.events = append(s.events, ev.Topic.String())
	s.mu.Unlock()
}

func (s *Session) takeEvents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}

// Scenario returns the scenario the session was built from.
func (s *Session) Scenario() *Scenario {
	return s.scenario
}

// Window returns the simulated window.
func (s *Session) Window() *env.Window {
	return s.window
}

// Monitor returns the session's monitor.
func (s *Session) Monitor() *monitor.Monitor {
	return s.monitor
}

// Clock returns the session clock.
func (s *Session) Clock() clock.Clock {
	return s.clock
}

// Apply executes one step and checks its expectations. Events published
// before the step, including those of the initial start, are discarded.
func (s *Session) Apply(step *Step) StepResult {
	result := StepResult{Step: step}

	s.takeEvents()

	if err := step.Validate(); err != nil {
		result.Error = err
		return result
	}

	if err := actions[step.Action].run(s, step); err != nil {
		result.Error = fmt.Errorf("%s: %w", step.Action, err)
		return result
	}

	result.Events = s.takeEvents()
	if state := s.monitor.State(); state != nil {
		result.State = state.Name()
		result.Percentage = state.Percentage
	}
	result.Started = s.monitor.Started()

	if step.Expect != nil {
		if err := check(step.Expect, &result); err != nil {
			result.Error = err
			return result
		}
	}

	result.Passed = true
	s.debugLog("step applied", "action", step.Action, "events", result.Events, "state", result.State)
	return result
}

// Close stops the monitor.
func (s *Session) Close() {
	s.monitor.Stop()
}

func check(want *Expect, got *StepResult) error {
	if want.State != "" && want.State != got.State {
		return fmt.Errorf("%w: state = %q, want %q", ErrExpectationFailed, got.State, want.State)
	}
	if want.Percentage != nil && math.Abs(*want.Percentage-got.Percentage) > 1e-9 {
		return fmt.Errorf("%w: percentage = %v, want %v", ErrExpectationFailed, got.Percentage, *want.Percentage)
	}
	if want.Events != nil && !slices.Equal(want.Events, got.Events) {
		return fmt.Errorf("%w: events = %v, want %v", ErrExpectationFailed, got.Events, want.Events)
	}
	if want.Started != nil && *want.Started != got.Started {
		return fmt.Errorf("%w: started = %v, want %v", ErrExpectationFailed, got.Started, *want.Started)
	}
	return nil
}

// debugLog logs at debug level if a logger is configured.
func (s *Session) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
