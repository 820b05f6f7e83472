package grid

import "math"

// Rect is an axis-aligned bounding box. X and Y locate the min corner,
// Width and Height are expected to be non-negative. A zero or negative
// dimension is treated as a point on that axis, not as an error.
type Rect struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

// Overlaps reports whether two rectangles intersect over an open interval:
// rectangles that only share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X+r.Width > o.X && r.X < o.X+o.Width &&
		r.Y+r.Height > o.Y && r.Y < o.Y+o.Height
}

func (r Rect) Equal(o Rect) bool {
	return r.X == o.X && r.Y == o.Y && r.Width == o.Width && r.Height == o.Height
}

// CellKey identifies one grid cell. Two objects share a bucket iff they
// share a cell key.
type CellKey struct {
	X int
	Y int
}

// Span is the inclusive range of cell coordinates covered by a rectangle.
//
// Start coordinates are clamped to a minimum of 0 so that objects at
// negative coordinates collapse into the boundary row/column instead of
// growing the key space. End coordinates are not clamped, which means a
// rectangle entirely at negative coordinates produces an empty span
// (XEnd < XStart) and occupies no cells. This asymmetry is kept on purpose,
// see the known limitations in DESIGN.md.
type Span struct {
	XStart int
	YStart int
	XEnd   int
	YEnd   int
}

func (s Span) Equal(o Span) bool {
	return s.XStart == o.XStart && s.YStart == o.YStart &&
		s.XEnd == o.XEnd && s.YEnd == o.YEnd
}

// CellCount returns the number of cells covered by the span, 0 for an
// empty span.
func (s Span) CellCount() int {
	w := s.XEnd - s.XStart + 1
	h := s.YEnd - s.YStart + 1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func cellCoord(v float32, cellSize float32) int {
	return (int)(math.Floor((float64)(v / cellSize)))
}
