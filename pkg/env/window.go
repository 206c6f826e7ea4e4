package env

import (
	"errors"
	"sync"
)

// Window errors.
var (
	ErrNodeNotFound = errors.New("node not found")
	ErrDuplicateID  = errors.New("duplicate node id")
	ErrInvalidSize  = errors.New("invalid size")
)

// Style values understood by Window.
const (
	DisplayNone  = "none"
	DisplayBlock = "block"

	VisibilityVisible  = "visible"
	VisibilityHidden   = "hidden"
	VisibilityCollapse = "collapse"
)

// DocumentID is the id of the root node of every Window.
const DocumentID = "document"

// Node is a node in a simulated document.
// Geometry is stored in page coordinates; BoundingRect subtracts the scroll offset.
type Node struct {
	id         string
	nodeType   NodeType
	parent     *Node
	top        float64
	left       float64
	width      float64
	height     float64
	display    string
	visibility string
}

// NodeType returns the node type. A nil node reports 0.
func (n *Node) NodeType() NodeType {
	if n == nil {
		return 0
	}
	return n.nodeType
}

// ID returns the node id.
func (n *Node) ID() string {
	return n.id
}

// Window is an in-memory Host. It is safe for concurrent use.
// Listeners are invoked synchronously on the goroutine that triggered the event.
type Window struct {
	mu sync.RWMutex

	viewport Size
	scrollX  float64
	scrollY  float64
	hidden   bool

	nodes map[string]*Node
	root  *Node

	nextListener uint64
	listeners    map[EventName]map[uint64]func()
	order        map[EventName][]uint64
	pageWatchers map[uint64]func()
	pageOrder    []uint64
}

// NewWindow creates a window with the given viewport size and an empty document.
func NewWindow(width, height float64) *Window {
	root := &Node{id: DocumentID, nodeType: DocumentNode, display: DisplayBlock, visibility: VisibilityVisible}
	return &Window{
		viewport:     Size{Width: width, Height: height},
		nodes:        map[string]*Node{DocumentID: root},
		root:         root,
		listeners:    make(map[EventName]map[uint64]func()),
		order:        make(map[EventName][]uint64),
		pageWatchers: make(map[uint64]func()),
	}
}

// Document returns the root node.
func (w *Window) Document() *Node {
	return w.root
}

// CreateElement adds an element with the given page geometry under parentID.
// An empty parentID attaches the element to the document.
func (w *Window) CreateElement(id, parentID string, rect Rect) (*Node, error) {
	return w.createNode(id, parentID, ElementNode, rect)
}

// CreateText adds a text node. Text nodes cannot be observed.
func (w *Window) CreateText(id, parentID string) (*Node, error) {
	return w.createNode(id, parentID, TextNode, Rect{})
}

func (w *Window) createNode(id, parentID string, nodeType NodeType, rect Rect) (*Node, error) {
	if parentID == "" {
		parentID = DocumentID
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.nodes[id]; exists {
		return nil, ErrDuplicateID
	}
	parent, ok := w.nodes[parentID]
	if !ok {
		return nil, ErrNodeNotFound
	}

	n := &Node{
		id:         id,
		nodeType:   nodeType,
		parent:     parent,
		top:        rect.Top,
		left:       rect.Left,
		width:      rect.Width,
		height:     rect.Height,
		display:    DisplayBlock,
		visibility: VisibilityVisible,
	}
	w.nodes[id] = n
	return n, nil
}

// Element returns the node with the given id, or nil.
func (w *Window) Element(id string) *Node {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.nodes[id]
}

// Remove detaches a node from the document. Its descendants stay attached to it
// and therefore become detached as well.
func (w *Window) Remove(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, ok := w.nodes[id]
	if !ok || n == w.root {
		return ErrNodeNotFound
	}
	n.parent = nil
	delete(w.nodes, id)
	return nil
}

// Move sets the page position of a node.
func (w *Window) Move(id string, top, left float64) error {
	return w.withNode(id, func(n *Node) {
		n.top = top
		n.left = left
	})
}

// Resize sets the size of a node.
func (w *Window) Resize(id string, width, height float64) error {
	return w.withNode(id, func(n *Node) {
		n.width = width
		n.height = height
	})
}

// SetDisplay sets the display style of a node.
func (w *Window) SetDisplay(id, display string) error {
	return w.withNode(id, func(n *Node) {
		n.display = display
	})
}

// SetVisibility sets the visibility style of a node.
func (w *Window) SetVisibility(id, visibility string) error {
	return w.withNode(id, func(n *Node) {
		n.visibility = visibility
	})
}

func (w *Window) withNode(id string, fn func(n *Node)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, ok := w.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	fn(n)
	return nil
}

// SetViewport changes the viewport size and dispatches a resize event.
func (w *Window) SetViewport(width, height float64) error {
	if width < 0 || height < 0 {
		return ErrInvalidSize
	}
	w.mu.Lock()
	w.viewport = Size{Width: width, Height: height}
	w.mu.Unlock()

	w.Dispatch(EventResize)
	return nil
}

// ScrollTo sets the scroll offset and dispatches a scroll event.
func (w *Window) ScrollTo(x, y float64) {
	w.mu.Lock()
	w.scrollX = x
	w.scrollY = y
	w.mu.Unlock()

	w.Dispatch(EventScroll)
}

// ScrollBy moves the scroll offset and dispatches a scroll event.
func (w *Window) ScrollBy(dx, dy float64) {
	w.mu.Lock()
	w.scrollX += dx
	w.scrollY += dy
	w.mu.Unlock()

	w.Dispatch(EventScroll)
}

// SetHidden changes the page visibility. Watchers are notified only on change.
func (w *Window) SetHidden(hidden bool) {
	w.mu.Lock()
	changed := w.hidden != hidden
	w.hidden = hidden
	watchers := w.snapshotPage()
	w.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range watchers {
		fn()
	}
}

// Dispatch invokes every listener registered for name, in registration order.
func (w *Window) Dispatch(name EventName) {
	w.mu.RLock()
	fns := make([]func(), 0, len(w.order[name]))
	for _, id := range w.order[name] {
		if fn, ok := w.listeners[name][id]; ok {
			fns = append(fns, fn)
		}
	}
	w.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// ListenerCount returns the number of live listeners for name.
func (w *Window) ListenerCount(name EventName) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.listeners[name])
}

// PageWatcherCount returns the number of live page visibility watchers.
func (w *Window) PageWatcherCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.pageWatchers)
}

// BoundingRect implements GeometryProvider. Unknown handles yield an empty rect.
func (w *Window) BoundingRect(el Element) Rect {
	n, ok := el.(*Node)
	if !ok || n == nil {
		return Rect{}
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return NewRect(n.top-w.scrollY, n.left-w.scrollX, n.width, n.height)
}

// Viewport implements GeometryProvider.
func (w *Window) Viewport() Size {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.viewport
}

// IsStyledVisible implements StyleSource.
func (w *Window) IsStyledVisible(el Element) bool {
	n, ok := el.(*Node)
	if !ok || n == nil {
		return false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if n == w.root {
		return true
	}
	if n.parent == nil {
		return false
	}
	for cur := n; cur != nil; cur = cur.parent {
		if cur.display == DisplayNone {
			return false
		}
		if cur.visibility == VisibilityHidden || cur.visibility == VisibilityCollapse {
			return false
		}
		if cur.parent == nil && cur != w.root {
			// ancestor chain does not reach the document
			return false
		}
	}
	return true
}

// IsHidden implements PageVisibility.
func (w *Window) IsHidden() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.hidden
}

// OnChange implements PageVisibility.
func (w *Window) OnChange(fn func()) func() {
	if fn == nil {
		return func() {}
	}

	w.mu.Lock()
	w.nextListener++
	id := w.nextListener
	w.pageWatchers[id] = fn
	w.pageOrder = append(w.pageOrder, id)
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.pageWatchers, id)
		w.pageOrder = removeID(w.pageOrder, id)
	}
}

// AddListener implements EventSource.
func (w *Window) AddListener(name EventName, fn func()) func() {
	if fn == nil {
		return func() {}
	}

	w.mu.Lock()
	w.nextListener++
	id := w.nextListener
	if w.listeners[name] == nil {
		w.listeners[name] = make(map[uint64]func())
	}
	w.listeners[name][id] = fn
	w.order[name] = append(w.order[name], id)
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners[name], id)
		w.order[name] = removeID(w.order[name], id)
	}
}

// snapshotPage returns page watchers in registration order. Caller holds w.mu.
func (w *Window) snapshotPage() []func() {
	fns := make([]func(), 0, len(w.pageOrder))
	for _, id := range w.pageOrder {
		if fn, ok := w.pageWatchers[id]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

func removeID(ids []uint64, id uint64) []uint64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Compile-time interface satisfaction check.
var _ Host = (*Window)(nil)
