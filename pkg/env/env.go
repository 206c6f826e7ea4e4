package env

// NodeType identifies the kind of a document node.
// Values follow the DOM numbering.
type NodeType uint8

const (
	// ElementNode is an element; only elements can be observed.
	ElementNode NodeType = 1

	// TextNode is a text node.
	TextNode NodeType = 3

	// DocumentNode is the document root.
	DocumentNode NodeType = 9
)

// String returns a human-readable node type name.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "ELEMENT"
	case TextNode:
		return "TEXT"
	case DocumentNode:
		return "DOCUMENT"
	default:
		return "UNKNOWN"
	}
}

// Element is an opaque handle to a node in the host document.
type Element interface {
	// NodeType reports the kind of node behind the handle.
	NodeType() NodeType
}

// IsElement reports whether el is a usable element handle.
func IsElement(el Element) bool {
	return el != nil && el.NodeType() == ElementNode
}

// Rect is a bounding box in viewport coordinates.
type Rect struct {
	Top    float64 `json:"top" yaml:"top"`
	Left   float64 `json:"left" yaml:"left"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Right  float64 `json:"right" yaml:"right"`
}

// NewRect builds a Rect from its origin and size, deriving Bottom and Right.
func NewRect(top, left, width, height float64) Rect {
	return Rect{
		Top:    top,
		Left:   left,
		Width:  width,
		Height: height,
		Bottom: top + height,
		Right:  left + width,
	}
}

// Size is a width/height pair, used for the viewport.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// EventName identifies a host event that may change element visibility.
type EventName string

const (
	EventResize    EventName = "resize"
	EventScroll    EventName = "scroll"
	EventTouchMove EventName = "touchmove"
)

// ViewportEvents lists the events an event-driven monitor listens to.
var ViewportEvents = []EventName{EventResize, EventScroll, EventTouchMove}

// GeometryProvider answers layout queries.
type GeometryProvider interface {
	// BoundingRect returns the element's bounding box in viewport coordinates.
	BoundingRect(el Element) Rect

	// Viewport returns the size of the visible drawing area.
	Viewport() Size
}

// StyleSource inspects computed styles.
type StyleSource interface {
	// IsStyledVisible reports false when the element or any ancestor has
	// display:none or visibility:hidden/collapse, or when the element is
	// detached from the document.
	IsStyledVisible(el Element) bool
}

// PageVisibility exposes the host's tab/page visibility signal.
type PageVisibility interface {
	// IsHidden reports whether the page is currently hidden.
	IsHidden() bool

	// OnChange registers fn for visibility changes and returns its cancel function.
	OnChange(fn func()) (unsubscribe func())
}

// EventSource subscribes to viewport-level events.
type EventSource interface {
	// AddListener registers fn for the named event and returns its cancel function.
	AddListener(name EventName, fn func()) (remove func())
}

// Host bundles every capability the engine needs.
type Host interface {
	GeometryProvider
	StyleSource
	PageVisibility
	EventSource
}
