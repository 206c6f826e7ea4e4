package visibility

// Code is the discrete visibility classification of an element.
type Code uint8

const (
	// Hidden means the element is not visible at all (at or below the hidden threshold).
	Hidden Code = iota

	// Visible means the element is partially visible.
	Visible

	// FullyVisible means the element is visible at or above the fully-visible threshold.
	FullyVisible
)

// String returns the state name.
func (c Code) String() string {
	switch c {
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	case FullyVisible:
		return "fullyvisible"
	default:
		return "unknown"
	}
}

// State is a sampled visibility state.
//
// A nil *State is the empty state: it has no code, no percentage, and every
// derived predicate reports false.
type State struct {
	// Code is the classification.
	Code Code `json:"code"`

	// Percentage is the visible fraction in [0,1], rounded to 3 decimals.
	Percentage float64 `json:"percentage"`

	// Previous is the prior state without its own history, or nil.
	Previous *State `json:"previous,omitempty"`
}

// NewState builds a state whose Previous is a shallow copy of previous with
// the copy's own Previous removed. previous itself is not modified.
func NewState(code Code, percentage float64, previous *State) *State {
	s := &State{Code: code, Percentage: percentage}
	if previous != nil {
		prev := *previous
		prev.Previous = nil
		s.Previous = &prev
	}
	return s
}

// Hidden reports whether the state is Hidden.
func (s *State) Hidden() bool {
	return s != nil && s.Code == Hidden
}

// Visible reports whether the state is Visible or FullyVisible.
func (s *State) Visible() bool {
	return s != nil && (s.Code == Visible || s.Code == FullyVisible)
}

// FullyVisible reports whether the state is FullyVisible.
func (s *State) FullyVisible() bool {
	return s != nil && s.Code == FullyVisible
}

// Name returns the state name, or "" for the empty state.
func (s *State) Name() string {
	if s == nil {
		return ""
	}
	return s.Code.String()
}
