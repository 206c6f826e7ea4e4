// Package visibility computes how much of an element is visible in the viewport.
//
// # Percentage
//
// The visible percentage is the fraction of the element's bounding box that
// intersects the viewport, rounded to three decimal places. It is forced to 0
// when the element has no area, lies outside the viewport, or is hidden by
// styling (display:none, visibility:hidden or collapse on the element or any
// ancestor).
//
// # Classification
//
// A percentage maps to one of three codes using two thresholds:
//
//	p <= HiddenThreshold        -> Hidden
//	p >= FullyVisibleThreshold  -> FullyVisible
//	otherwise                   -> Visible
//
// # Visibility Hooks
//
// Before any geometry is queried, an Object runs its visibility hooks in
// order. The page-visibility hook is always appended last. If any hook
// reports false, the state is Hidden with percentage 0.
//
// # States
//
// State values carry the classification, the percentage and a one-level
// history: Previous is a copy of the prior state with its own Previous
// stripped, so histories never chain.
package visibility
