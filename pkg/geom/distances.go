package geom

import "math"

const (
	// MinDistance is the cap returned when a point is obviously far away.
	// Distances are only used to discriminate objects during selection, so
	// anything beyond this value is reported as exactly MinDistance.
	MinDistance = 100

	// MaxBezierSegments is the number of chords used to approximate a cubic
	MaxBezierSegments = 10
)

// PointToPointF returns the distance between two points, or MinDistance
// when both axis gaps are at least MinDistance.
func PointToPointF(xa, ya, xb, yb float64) float64 {
	if math.Abs(xa-xb) < MinDistance || math.Abs(ya-yb) < MinDistance {
		return math.Sqrt((xa-xb)*(xa-xb) + (ya-yb)*(ya-yb))
	}
	return MinDistance
}

// PointToPoint is the integer version of PointToPointF (truncated)
func PointToPoint(xa, ya, xb, yb int) int {
	if absInt(xa-xb) < MinDistance || absInt(ya-yb) < MinDistance {
		return int(math.Sqrt(float64((xa-xb)*(xa-xb) + (ya-yb)*(ya-yb))))
	}
	return MinDistance
}

// PointToSegmentF returns the distance between (x,y) and the segment a-b.
// The projection parameter is clamped to [0,1]. Points outside the segment
// box grown by MinDistance get MinDistance without further work.
func PointToSegmentF(xa, ya, xb, yb, x, y float64) float64 {
	xmin, xmax := xa, xb
	if xa > xb {
		xmin, xmax = xb, xa
	}
	if x < xmin-MinDistance || x > xmax+MinDistance {
		return MinDistance
	}
	ymin, ymax := ya, yb
	if ya > yb {
		ymin, ymax = yb, ya
	}
	if y < ymin-MinDistance || y > ymax+MinDistance {
		return MinDistance
	}

	dx := xb - xa
	dy := yb - ya
	if dx == 0 && dy == 0 {
		dx = x - xa
		dy = y - ya
		return math.Sqrt(dx*dx + dy*dy)
	}

	t := ((x-xa)*dx + (y-ya)*dy) / (dx*dx + dy*dy)
	switch {
	case t < 0:
		dx = x - xa
		dy = y - ya
	case t > 1:
		dx = x - xb
		dy = y - yb
	default:
		dx = x - (xa + t*dx)
		dy = y - (ya + t*dy)
	}
	return math.Sqrt(dx*dx + dy*dy)
}

// PointToSegment is the integer version of PointToSegmentF. The projection
// is computed in fixed point with three decimal digits.
func PointToSegment(xa, ya, xb, yb, x, y int) int {
	xmin, xmax := xa, xb
	if xa > xb {
		xmin, xmax = xb, xa
	}
	if x < xmin-MinDistance || x > xmax+MinDistance {
		return MinDistance
	}
	ymin, ymax := ya, yb
	if ya > yb {
		ymin, ymax = yb, ya
	}
	if y < ymin-MinDistance || y > ymax+MinDistance {
		return MinDistance
	}

	if xb == xa && yb == ya {
		dx := x - xa
		dy := y - ya
		return int(math.Sqrt(float64(dx*dx + dy*dy)))
	}

	dx := xb - xa
	dy := yb - ya
	t := 1000 * ((x-xa)*dx + (y-ya)*dy) / (dx*dx + dy*dy)
	switch {
	case t < 0:
		dx = x - xa
		dy = y - ya
	case t > 1000:
		dx = x - xb
		dy = y - yb
	default:
		dx = x - (xa + t*dx/1000)
		dy = y - (ya + t*dy/1000)
	}
	return int(math.Sqrt(float64(dx*dx + dy*dy)))
}

// PointInPolygon runs the even-odd crossing test over the vertex lists.
// The polygon is assumed simple. Points lying exactly on an edge may be
// reported either way.
func PointInPolygon(xp, yp []int, x, y float64) bool {
	n := len(xp)
	if len(yp) < n {
		n = len(yp)
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		yi, yj := float64(yp[i]), float64(yp[j])
		if (yi <= y && y < yj || yj <= y && y < yi) &&
			x < float64(xp[j]-xp[i])*(y-yi)/(yj-yi)+float64(xp[i]) {
			inside = !inside
		}
	}
	return inside
}

// PointInEllipseF tests whether (px,py) lies inside the axis-aligned ellipse
// inscribed in the box (ex,ey,w,h).
func PointInEllipseF(ex, ey, w, h, px, py float64) bool {
	dx := math.Abs(px - (ex + w/2))
	dy := math.Abs(py - (ey + h/2))
	if dx > w/2 || dy > h/2 {
		return false
	}
	return 4*dx*dx/w/w+4*dy*dy/h/h < 1
}

// PointInEllipse is the integer entry point for PointInEllipseF
func PointInEllipse(ex, ey, w, h, px, py int) bool {
	return PointInEllipseF(float64(ex), float64(ey), float64(w), float64(h),
		float64(px), float64(py))
}

// PointToEllipseF approximates the distance between (px,py) and the outline
// of the ellipse inscribed in (ex,ey,w,h) using the normalized radius. A
// zero-width or zero-height ellipse is treated as a segment.
func PointToEllipseF(ex, ey, w, h, px, py float64) float64 {
	dx := math.Abs(px - (ex + w/2))
	dy := math.Abs(py - (ey + h/2))
	if w == 0 {
		return PointToSegmentF(ex, ey, ex, ey+h, px, py)
	}
	if h == 0 {
		return PointToSegmentF(ex, ey, ex+w, ey, px, py)
	}
	l := (dx*dx/w/w + dy*dy/h/h) * 4
	return math.Abs(l-1) * math.Min(w, h) / 4
}

// PointToEllipse rounds the result of PointToEllipseF
func PointToEllipse(ex, ey, w, h, px, py int) int {
	return Round(PointToEllipseF(float64(ex), float64(ey), float64(w),
		float64(h), float64(px), float64(py)))
}

// PointInRectangleF tests (px,py) against the box, borders included
func PointInRectangleF(ex, ey, w, h, px, py float64) bool {
	return !(ex > px || px > ex+w || ey > py || py > ey+h)
}

// PointInRectangle tests (px,py) against the box, borders included
func PointInRectangle(ex, ey, w, h, px, py int) bool {
	return !(ex > px || px > ex+w || ey > py || py > ey+h)
}

// PointToRectangleF returns the distance to the closest of the four sides
func PointToRectangleF(ex, ey, w, h, px, py float64) float64 {
	d1 := PointToSegmentF(ex, ey, ex+w, ey, px, py)
	d2 := PointToSegmentF(ex+w, ey, ex+w, ey+h, px, py)
	d3 := PointToSegmentF(ex+w, ey+h, ex, ey+h, px, py)
	d4 := PointToSegmentF(ex, ey+h, ex, ey, px, py)
	return math.Min(math.Min(d1, d2), math.Min(d3, d4))
}

// PointToRectangle returns the distance to the closest of the four sides
func PointToRectangle(ex, ey, w, h, px, py int) int {
	d1 := PointToSegment(ex, ey, ex+w, ey, px, py)
	d2 := PointToSegment(ex+w, ey, ex+w, ey+h, px, py)
	d3 := PointToSegment(ex+w, ey+h, ex, ey+h, px, py)
	d4 := PointToSegment(ex, ey+h, ex, ey, px, py)
	return min(d1, d2, d3, d4)
}

// PointToBezier approximates the cubic Bézier as MaxBezierSegments chords,
// sampled with the Bernstein form at evenly spaced parameters, and returns
// the minimum chord distance. It is not an exact nearest-point solve.
func PointToBezier(x1, y1, x2, y2, x3, y3, x4, y4, px, py int) int {
	var x, y [MaxBezierSegments + 1]int
	for i := 0; i <= MaxBezierSegments; i++ {
		u := float64(i) / MaxBezierSegments
		umu := 1 - u
		b03 := umu * umu * umu
		b13 := 3 * u * umu * umu
		b23 := 3 * u * u * umu
		b33 := u * u * u
		x[i] = int(float64(x1)*b03 + float64(x2)*b13 + float64(x3)*b23 + float64(x4)*b33)
		y[i] = int(float64(y1)*b03 + float64(y2)*b13 + float64(y3)*b23 + float64(y4)*b33)
	}

	distance := math.MaxInt32
	for j := 0; j < MaxBezierSegments; j++ {
		distance = min(distance, PointToSegment(x[j], y[j], x[j+1], y[j+1], px, py))
	}
	return distance
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
