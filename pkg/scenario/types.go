// Package scenario loads YAML scenarios that script a simulated window and
// one visibility monitor, and runs them step by step.
//
// A scenario declares a viewport, a set of elements, the monitored element
// and a list of steps. Each step mutates the window or drives the monitor
// and may state what the monitor must look like afterwards:
//
//	name: scroll into view
//	viewport: {width: 100, height: 100}
//	elements:
//	  - {id: hero, top: 150, left: 0, width: 10, height: 10}
//	monitor:
//	  element: hero
//	  strategy: event
//	  start: true
//	steps:
//	  - action: scroll
//	    y: 55
//	    expect:
//	      state: visible
//	      percentage: 0.5
//	      events: [update, percentagechange, visibilitychange, visible]
package scenario

import "strconv"

// Scenario is a scripted simulation loaded from YAML.
type Scenario struct {
	// Name identifies the scenario in reports.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Viewport is the initial viewport size.
	Viewport Viewport `yaml:"viewport"`

	// Elements are created in order. Parents must precede their children.
	Elements []Element `yaml:"elements"`

	// Monitor configures the monitored element.
	Monitor MonitorSpec `yaml:"monitor"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Tags for selecting scenarios.
	Tags []string `yaml:"tags,omitempty"`
}

// Viewport is a viewport size.
type Viewport struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Element declares one simulated element.
type Element struct {
	ID         string  `yaml:"id"`
	Parent     string  `yaml:"parent,omitempty"`
	Top        float64 `yaml:"top"`
	Left       float64 `yaml:"left"`
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Display    string  `yaml:"display,omitempty"`
	Visibility string  `yaml:"visibility,omitempty"`
}

// Strategy names accepted in MonitorSpec.Strategy.
const (
	StrategyNone    = "none"
	StrategyPolling = "polling"
	StrategyEvent   = "event"
	StrategyDefault = "default"
)

// MonitorSpec configures the scenario's monitor.
type MonitorSpec struct {
	// Element is the id of the observed element.
	Element string `yaml:"element"`

	// Hidden is the hidden threshold.
	Hidden float64 `yaml:"hidden,omitempty"`

	// FullyVisible is the fully-visible threshold. Zero selects the default.
	FullyVisible float64 `yaml:"fully_visible,omitempty"`

	// Strategy is one of none, polling, event or default. Empty means none.
	Strategy string `yaml:"strategy,omitempty"`

	// Interval is the polling interval (e.g., "1s").
	Interval string `yaml:"interval,omitempty"`

	// Throttle is the event throttle window (e.g., "50ms").
	Throttle string `yaml:"throttle,omitempty"`

	// Start starts the monitor before the first step.
	Start bool `yaml:"start,omitempty"`
}

// Step is one scripted action.
type Step struct {
	// Action is the action to perform (e.g., "move", "scroll", "update").
	Action string `yaml:"action"`

	// Element is the target element for element actions.
	Element string `yaml:"element,omitempty"`

	// Geometry for move, resize, scroll, scroll_by and viewport.
	Top    float64 `yaml:"top,omitempty"`
	Left   float64 `yaml:"left,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`

	// Value is the style value for display and visibility, or the event
	// name for dispatch.
	Value string `yaml:"value,omitempty"`

	// Hidden is the page state for page_hidden.
	Hidden bool `yaml:"hidden,omitempty"`

	// Duration is the clock advance for advance (e.g., "50ms").
	Duration string `yaml:"duration,omitempty"`

	// Expect is checked after the action.
	Expect *Expect `yaml:"expect,omitempty"`

	// Description explains what this step does.
	Description string `yaml:"description,omitempty"`
}

// Expect describes the monitor after a step.
type Expect struct {
	// State is the expected state name (hidden, visible, fullyvisible).
	State string `yaml:"state,omitempty"`

	// Percentage is the expected visible percentage.
	Percentage *float64 `yaml:"percentage,omitempty"`

	// Events are the topics published during the step, in order.
	// Nil skips the check; an empty list requires that nothing was published.
	Events []string `yaml:"events"`

	// Started is the expected started flag.
	Started *bool `yaml:"started,omitempty"`
}

// LoadError provides details about a scenario loading error.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Step is the 1-based step number at fault (0 if not step specific).
	Step int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Step > 0 {
		msg = "step " + strconv.Itoa(e.Step) + ": " + msg
	}
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
