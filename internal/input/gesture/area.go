package gesture

// Area is a rectangular hit-test region in gesture units.
type Area struct {
	X, Y          float64
	Width, Height float64
}

// Empty reports whether the area has no extent.
func (a Area) Empty() bool {
	return a.Width <= 0 || a.Height <= 0
}

// Contains reports whether the point lies inside the area. The right and
// bottom edges are exclusive.
func (a Area) Contains(x, y float64) bool {
	if a.Empty() {
		return false
	}
	return x >= a.X && x < a.X+a.Width && y >= a.Y && y < a.Y+a.Height
}
