package primitives

import (
	"fmt"
	"math"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
)

// Arrow style bits
const (
	ArrowLimiter = 0x01 // bar across the tip
	ArrowEmpty   = 0x02 // outline only
)

// Arrow describes the arrow heads at the ends of lines and curves
type Arrow struct {
	Start     bool
	End       bool
	Style     int
	Length    float32
	HalfWidth float32

	// sizes in pixels, set by prepare
	l, h int
}

// NewArrow returns arrow data without heads and with the default size
func NewArrow() Arrow {
	return Arrow{Length: 3, HalfWidth: 1}
}

// Any reports whether at least one head is drawn
func (a *Arrow) Any() bool {
	return a.Start || a.End
}

func arrowSize(v float32) string {
	const tolerance = 1e-5
	r := geom.Round(float64(v))
	if math.Abs(float64(v)-float64(r)) < tolerance {
		return strconv.Itoa(r)
	}
	return geom.FormatFloat32(v)
}

// Tokens writes the four arrow fields of an FCJ row
func (a *Arrow) Tokens() string {
	arrows := 0
	if a.Start {
		arrows |= 0x01
	}
	if a.End {
		arrows |= 0x02
	}
	return fmt.Sprintf("%d %d %s %s", arrows, a.Style,
		arrowSize(a.Length), arrowSize(a.HalfWidth))
}

// parseTokens reads the arrow fields starting at tokens[i] and returns
// the index of the next token
func (a *Arrow) parseTokens(tokens []string, i int) (int, error) {
	if len(tokens) < i+4 {
		return i, fmt.Errorf("arrow: %w", ErrTooFewTokens)
	}
	arrows, err := parseInt(tokens[i], "arrow flags")
	if err != nil {
		return i, err
	}
	style, err := parseInt(tokens[i+1], "arrow style")
	if err != nil {
		return i, err
	}
	length, err := strconv.ParseFloat(tokens[i+2], 32)
	if err != nil {
		return i, fmt.Errorf("invalid arrow length: %w", err)
	}
	halfWidth, err := strconv.ParseFloat(tokens[i+3], 32)
	if err != nil {
		return i, fmt.Errorf("invalid arrow width: %w", err)
	}
	a.Start = arrows&0x01 != 0
	a.End = arrows&0x02 != 0
	a.Style = style
	a.Length = float32(length)
	a.HalfWidth = float32(halfWidth)
	return i + 4, nil
}

// prepare converts the arrow sizes into pixels for cs
func (a *Arrow) prepare(cs *geom.MapCoordinates) {
	hw, ln := float64(a.HalfWidth), float64(a.Length)
	a.h = absInt(cs.MapXi(hw, hw, false) - cs.MapXi(0, 0, false))
	a.l = absInt(cs.MapXi(ln, ln, false) - cs.MapXi(0, 0, false))
	if a.HalfWidth < 0 {
		a.h = -a.h
	}
	if a.Length < 0 {
		a.l = -a.l
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// angle of the arrow with its tip at (x,y) pointing away from (xc,yc)
func arrowAngle(x, y, xc, yc int) float64 {
	var alpha float64
	if x == xc {
		alpha = math.Pi / 2
		if y-yc >= 0 {
			alpha += math.Pi
		}
	} else {
		alpha = math.Atan(float64(y-yc) / float64(x-xc))
	}
	if x-xc <= 0 {
		alpha += math.Pi
	}
	return alpha
}

// points returns the base of the head, its two side corners and, for
// the limiter style, the ends of the bar
func (a *Arrow) points(x, y, xc, yc int) []geom.PointF {
	alpha := arrowAngle(x, y, xc, yc)
	s, c := math.Sin(alpha), math.Cos(alpha)
	l, h := float64(a.l), float64(a.h)
	fx, fy := float64(x), float64(y)

	p0 := geom.PointF{X: fx - l*c, Y: fy - l*s}
	p := []geom.PointF{
		p0,
		{X: p0.X - h*s, Y: p0.Y + h*c},
		{X: p0.X + h*s, Y: p0.Y - h*c},
	}
	if a.Style&ArrowLimiter != 0 {
		p = append(p,
			geom.PointF{X: fx - h*s, Y: fy + h*c},
			geom.PointF{X: fx + h*s, Y: fy - h*c})
	}
	return p
}

// inArrow reports whether (xs,ys) lies inside the head drawn at (x,y)
// and returns the rounded base of the head
func (a *Arrow) inArrow(xs, ys, x, y, xc, yc int) (bool, geom.Point) {
	p := a.points(x, y, xc, yc)
	xp := []int{x, geom.Round(p[1].X), geom.Round(p[2].X)}
	yp := []int{y, geom.Round(p[1].Y), geom.Round(p[2].Y)}
	bp := geom.Point{X: geom.Round(p[0].X), Y: geom.Round(p[0].Y)}
	return geom.PointInPolygon(xp, yp, float64(xs), float64(ys)), bp
}

// track adds the head drawn at pixel (x,y) to the extrema of cs and
// returns its base
func (a *Arrow) track(cs *geom.MapCoordinates, x, y, xc, yc int) geom.Point {
	p := a.points(x, y, xc, yc)
	cs.TrackPoint(float64(x), float64(y))
	for _, q := range p[1:] {
		cs.TrackPoint(q.X, q.Y)
	}
	return geom.Point{X: int(p[0].X), Y: int(p[0].Y)}
}
