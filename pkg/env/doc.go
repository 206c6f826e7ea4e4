// Package env defines the host capabilities the visibility engine consumes.
//
// The engine never touches a document directly. Geometry, style inspection,
// page visibility and low-level event subscription are supplied by the host
// through the interfaces in this package:
//
//   - GeometryProvider: element bounding box and viewport size
//   - StyleSource: display/visibility check along the ancestor chain
//   - PageVisibility: page-hidden flag and change subscription
//   - EventSource: resize, scroll and touchmove subscription
//
// Host bundles all four. Every subscription returns an explicit cancel
// function; the caller that subscribed owns the handle.
//
// # Simulated Host
//
// Window is an in-memory Host with a node tree, per-node geometry and style,
// a scroll offset, a page-hidden flag and synchronous event dispatch. It backs
// the vissense-sim command, YAML scenarios and most tests.
package env
