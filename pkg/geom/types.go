package geom

import "math"

// Point is a position in logical drawing units (5 mil per unit)
type Point struct {
	X int
	Y int
}

// PointF is a position with sub-unit precision, used by curve sampling
type PointF struct {
	X float64
	Y float64
}

// Rect represents a rectangular boundary in logical units
type Rect struct {
	Min Point // Minimum (top-left) corner
	Max Point // Maximum (bottom-right) corner
}

// NewRect creates an empty rectangle ready to be expanded
func NewRect() Rect {
	return Rect{
		Min: Point{X: math.MaxInt32, Y: math.MaxInt32},
		Max: Point{X: math.MinInt32, Y: math.MinInt32},
	}
}

// RectFromCorners builds a normalized rectangle from two opposite corners
func RectFromCorners(a, b Point) Rect {
	r := NewRect()
	r.Expand(a)
	r.Expand(b)
	return r
}

// IsEmpty checks if the rectangle has never been expanded
func (r Rect) IsEmpty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

// Expand grows the rectangle to include a point
func (r *Rect) Expand(p Point) {
	if p.X < r.Min.X {
		r.Min.X = p.X
	}
	if p.Y < r.Min.Y {
		r.Min.Y = p.Y
	}
	if p.X > r.Max.X {
		r.Max.X = p.X
	}
	if p.Y > r.Max.Y {
		r.Max.Y = p.Y
	}
}

// ExpandRect grows the rectangle to include another one
func (r *Rect) ExpandRect(other Rect) {
	if !other.IsEmpty() {
		r.Expand(other.Min)
		r.Expand(other.Max)
	}
}

// Width returns the width of the rectangle
func (r Rect) Width() int {
	return r.Max.X - r.Min.X
}

// Height returns the height of the rectangle
func (r Rect) Height() int {
	return r.Max.Y - r.Min.Y
}

// Contains checks if a point is within the rectangle (borders included)
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects checks if two rectangles overlap
func (r Rect) Intersects(other Rect) bool {
	return r.Min.X <= other.Max.X && r.Max.X >= other.Min.X &&
		r.Min.Y <= other.Max.Y && r.Max.Y >= other.Min.Y
}

// IntersectsSegment reports whether the segment a-b touches the rectangle.
// Uses Liang-Barsky clipping against the four borders.
func (r Rect) IntersectsSegment(a, b Point) bool {
	if r.Contains(a) || r.Contains(b) {
		return true
	}
	x0, y0 := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}
	return clip(-dx, x0-float64(r.Min.X)) &&
		clip(dx, float64(r.Max.X)-x0) &&
		clip(-dy, y0-float64(r.Min.Y)) &&
		clip(dy, float64(r.Max.Y)-y0)
}

// Round rounds half up, i.e. floor(v+0.5). FidoCadJ files were always
// written with this rounding, which differs from math.Round for negative
// halves (-2.5 gives -2 here).
func Round(v float64) int {
	return int(math.Floor(v + 0.5))
}
