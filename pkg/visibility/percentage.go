package visibility

import (
	"math"

	"github.com/vissense/vissense-go/pkg/env"
)

// InViewport reports whether rect has an area and overlaps the viewport.
func InViewport(rect env.Rect, viewport env.Size) bool {
	if rect.Width <= 0 || rect.Height <= 0 {
		return false
	}
	return rect.Bottom > 0 &&
		rect.Right > 0 &&
		rect.Top < viewport.Height &&
		rect.Left < viewport.Width
}

// Percentage returns the fraction of rect that lies inside the viewport,
// rounded to 3 decimal places. Styling is not considered.
func Percentage(rect env.Rect, viewport env.Size) float64 {
	if !InViewport(rect, viewport) {
		return 0
	}

	var vh, vw float64
	if rect.Top >= 0 {
		vh = math.Min(rect.Height, viewport.Height-rect.Top)
	} else {
		vh = math.Min(viewport.Height, rect.Bottom)
	}
	if rect.Left >= 0 {
		vw = math.Min(rect.Width, viewport.Width-rect.Left)
	} else {
		vw = math.Min(viewport.Width, rect.Right)
	}

	return round3(vh * vw / (rect.Height * rect.Width))
}

// Classify maps a percentage to a Code. The hidden test takes precedence.
func Classify(percentage, hiddenThreshold, fullyVisibleThreshold float64) Code {
	switch {
	case percentage <= hiddenThreshold:
		return Hidden
	case percentage >= fullyVisibleThreshold:
		return FullyVisible
	default:
		return Visible
	}
}

// GeometricPercentage returns a percentage hook that measures el against the
// host viewport, honouring styling. Geometry is checked before styles.
func GeometricPercentage(geometry env.GeometryProvider, style env.StyleSource) PercentageHook {
	return func(el env.Element) float64 {
		rect := geometry.BoundingRect(el)
		viewport := geometry.Viewport()
		if !InViewport(rect, viewport) {
			return 0
		}
		if !style.IsStyledVisible(el) {
			return 0
		}
		return Percentage(rect, viewport)
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
