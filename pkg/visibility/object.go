package visibility

import (
	"errors"
	"fmt"

	"github.com/vissense/vissense-go/pkg/env"
)

// Object errors.
var (
	ErrInvalidElement = errors.New("not an element node")
	ErrNilHost        = errors.New("host is required")
)

// Default thresholds.
const (
	DefaultHiddenThreshold       = 0.0
	DefaultFullyVisibleThreshold = 1.0
)

// PercentageHook computes the visible percentage of an element.
type PercentageHook func(el env.Element) float64

// VisibilityHook vetoes visibility. Returning false forces the Hidden state.
type VisibilityHook func(el env.Element) bool

// Config holds the per-element configuration of an Object.
type Config struct {
	// HiddenThreshold is the percentage at or below which the element is Hidden.
	HiddenThreshold float64

	// FullyVisibleThreshold is the percentage at or above which the element is
	// FullyVisible. Zero selects the default.
	FullyVisibleThreshold float64

	// PercentageHook replaces the geometric percentage calculation.
	PercentageHook PercentageHook

	// VisibilityHooks run in order before the percentage is computed.
	// The page-visibility hook is appended after them.
	VisibilityHooks []VisibilityHook
}

// DefaultConfig returns the default object configuration.
func DefaultConfig() Config {
	return Config{
		HiddenThreshold:       DefaultHiddenThreshold,
		FullyVisibleThreshold: DefaultFullyVisibleThreshold,
	}
}

// Object binds one element to its host and configuration.
// It holds no cached state; every query samples the host.
type Object struct {
	element env.Element
	host    env.Host
	config  Config
	hooks   []VisibilityHook
}

// New creates an Object with the default configuration.
func New(el env.Element, host env.Host) (*Object, error) {
	return NewWithConfig(el, host, DefaultConfig())
}

// NewWithConfig creates an Object with a custom configuration.
// It fails with ErrInvalidElement when el is not an element node.
func NewWithConfig(el env.Element, host env.Host, config Config) (*Object, error) {
	if !env.IsElement(el) {
		return nil, fmt.Errorf("visibility: %w", ErrInvalidElement)
	}
	if host == nil {
		return nil, fmt.Errorf("visibility: %w", ErrNilHost)
	}

	if config.FullyVisibleThreshold == 0 {
		config.FullyVisibleThreshold = DefaultFullyVisibleThreshold
	}
	if config.PercentageHook == nil {
		config.PercentageHook = GeometricPercentage(host, host)
	}

	hooks := make([]VisibilityHook, 0, len(config.VisibilityHooks)+1)
	for _, h := range config.VisibilityHooks {
		if h != nil {
			hooks = append(hooks, h)
		}
	}
	hooks = append(hooks, pageVisible(host))

	// detach from the caller's slice
	config.VisibilityHooks = append([]VisibilityHook(nil), config.VisibilityHooks...)

	return &Object{
		element: el,
		host:    host,
		config:  config,
		hooks:   hooks,
	}, nil
}

// pageVisible is the built-in hook backed by the host page-visibility signal.
func pageVisible(page env.PageVisibility) VisibilityHook {
	return func(env.Element) bool {
		return !page.IsHidden()
	}
}

// State samples the current visibility state. The returned state has no Previous.
func (o *Object) State() *State {
	for _, hook := range o.hooks {
		if !hook(o.element) {
			return NewState(Hidden, 0, nil)
		}
	}

	p := o.config.PercentageHook(o.element)
	return NewState(Classify(p, o.config.HiddenThreshold, o.config.FullyVisibleThreshold), p, nil)
}

// Percentage returns the current visible percentage.
func (o *Object) Percentage() float64 {
	return o.State().Percentage
}

// IsVisible reports whether the element is at least partially visible.
func (o *Object) IsVisible() bool {
	return o.State().Visible()
}

// IsFullyVisible reports whether the element is fully visible.
func (o *Object) IsFullyVisible() bool {
	return o.State().FullyVisible()
}

// IsHidden reports whether the element is hidden.
func (o *Object) IsHidden() bool {
	return o.State().Hidden()
}

// Element returns the observed element.
func (o *Object) Element() env.Element {
	return o.element
}

// Host returns the host the element lives in.
func (o *Object) Host() env.Host {
	return o.host
}

// Config returns the materialized configuration.
func (o *Object) Config() Config {
	return o.config
}
