package pager

import "math"

// clampMagnitude limits v to [-limit, limit].
func clampMagnitude(v, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Max(-limit, math.Min(limit, v))
}

// lockDirection fixes the direction once the accumulated displacement moves
// past epsilon. A locked direction is returned unchanged.
func lockDirection(dir Direction, total, epsilon float64) Direction {
	if dir != DirectionUnknown {
		return dir
	}
	switch {
	case total <= -epsilon && total < 0:
		return DirectionNegative
	case total >= epsilon && total > 0:
		return DirectionPositive
	default:
		return DirectionUnknown
	}
}

// clampDirection keeps a locked gesture from crossing back through zero.
func clampDirection(v float64, dir Direction) float64 {
	switch dir {
	case DirectionNegative:
		return math.Min(0, v)
	case DirectionPositive:
		return math.Max(0, v)
	default:
		return v
	}
}

// clampEdges disallows pulling in a page that does not exist and keeps the
// offset within one page width.
func clampEdges(v float64, index, pageCount int, pageWidth float64) float64 {
	upper := pageWidth // toward the previous page
	if index <= 0 {
		upper = 0
	}
	lower := -pageWidth // toward the next page
	if index >= pageCount-1 {
		lower = 0
	}
	return math.Max(lower, math.Min(upper, v))
}

// snapToRest reads offsets inside the window as exactly zero.
func snapToRest(v, window float64) float64 {
	if math.Abs(v) < window {
		return 0
	}
	return v
}

// clampIndex keeps index within [0, pageCount).
func clampIndex(index, pageCount int) int {
	if index < 0 {
		return 0
	}
	if index > pageCount-1 {
		return pageCount - 1
	}
	return index
}
