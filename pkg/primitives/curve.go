package primitives

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
)

// CurveSteps is the number of samples taken on every spline segment
const CurveSteps = 24

// ComplexCurve is a natural cubic spline through its control points,
// "CV" (outline) or "CP" (filled), open or closed
type ComplexCurve struct {
	base
	nPoints int
	filled  bool
	closed  bool
	arrow   Arrow
	dash    int
}

func NewComplexCurve(font string, size int) *ComplexCurve {
	return &ComplexCurve{base: newBase(0, true, font, size), arrow: NewArrow()}
}

func newComplexCurveAt(filled, closed bool, layer int, a Arrow, dash int, font string, size int) *ComplexCurve {
	c := NewComplexCurve(font, size)
	c.filled = filled
	c.closed = closed
	c.arrow = a
	c.dash = checkDash(dash)
	c.SetLayer(layer)
	return c
}

func (c *ComplexCurve) Kind() Kind { return KindComplexCurve }

func (c *ComplexCurve) Filled() bool { return c.filled }

func (c *ComplexCurve) Closed() bool { return c.closed }

func (c *ComplexCurve) Arrow() *Arrow { return &c.arrow }

func (c *ComplexCurve) Dash() int { return c.dash }

func (c *ComplexCurve) SetDash(d int) { c.dash = checkDash(d) }

func (c *ComplexCurve) Vertices() []geom.Point { return c.points[:c.nPoints] }

func (c *ComplexCurve) AddPoint(x, y int) {
	c.addVertex(x, y)
	c.nPoints++
}

func (c *ComplexCurve) ParseTokens(tokens []string) error {
	nn := len(tokens)
	if nn < 6 {
		return fmt.Errorf("%s: %w", tokens[0], ErrTooFewTokens)
	}
	c.closed = tokens[1] == "1"
	v, j, err := parseVertices(tokens, 2, true)
	if err != nil {
		return fmt.Errorf("%s: %w", tokens[0], err)
	}
	c.setVertices(v)
	c.nPoints = len(v)
	if len(v) > 0 {
		last := v[len(v)-1]
		c.setTextAnchors(last.X, last.Y)
	}
	if nn > j {
		c.parseLayer(tokens[j])
		j++
		if nn > j && tokens[j] == "FCJ" {
			dash, err := parseExtension(&c.arrow, tokens, j+1)
			if err != nil {
				return fmt.Errorf("%s: %w", tokens[0], err)
			}
			c.dash = dash
		}
	}
	c.filled = tokens[0] == "CP"
	return nil
}

func (c *ComplexCurve) String(extensions bool) string {
	if !c.hasName() && !c.hasValue() && c.nPoints == 1 {
		return ""
	}
	var sb strings.Builder
	if c.filled {
		sb.WriteString("CP ")
	} else {
		sb.WriteString("CV ")
	}
	if c.closed {
		sb.WriteString("1 ")
	} else {
		sb.WriteString("0 ")
	}
	for _, v := range c.Vertices() {
		fmt.Fprintf(&sb, "%d %d ", v.X, v.Y)
	}
	fmt.Fprintf(&sb, "%d\n", c.layer)
	if extensions && (c.arrow.Any() || c.dash > 0 || c.hasName() || c.hasValue()) {
		fmt.Fprintf(&sb, "FCJ %s %d %s\n", c.arrow.Tokens(), c.dash, c.textFlag())
	}
	sb.WriteString(c.saveText(false))
	return sb.String()
}

// cubic is a + b*u + c*u^2 + d*u^3 for u in [0,1]
type cubic struct {
	a, b, c, d float64
}

func (k cubic) eval(u float64) float64 {
	return ((k.d*u+k.c)*u+k.b)*u + k.a
}

// naturalCubic returns the n segments of the open natural spline through
// x[0]..x[n]
func naturalCubic(n int, x []float64) []cubic {
	if n < 1 {
		return nil
	}
	gamma := make([]float64, n+1)
	delta := make([]float64, n+1)
	dd := make([]float64, n+1)

	// Tridiagonal system solved by forward elimination and back
	// substitution. dd are the derivatives at the knots.
	gamma[0] = 1.0 / 2.0
	for i := 1; i < n; i++ {
		gamma[i] = 1.0 / (4.0 - gamma[i-1])
	}
	gamma[n] = 1.0 / (2.0 - gamma[n-1])

	delta[0] = 3 * (x[1] - x[0]) * gamma[0]
	for i := 1; i < n; i++ {
		delta[i] = (3.0*(x[i+1]-x[i-1]) - delta[i-1]) * gamma[i]
	}
	delta[n] = (3.0*(x[n]-x[n-1]) - delta[n-1]) * gamma[n]

	dd[n] = delta[n]
	for i := n - 1; i >= 0; i-- {
		dd[i] = delta[i] - gamma[i]*dd[i+1]
	}

	cc := make([]cubic, n)
	for i := range cc {
		cc[i] = cubic{x[i], dd[i], 3.0*(x[i+1]-x[i]) - 2.0*dd[i] - dd[i+1],
			2.0*(x[i]-x[i+1]) + dd[i] + dd[i+1]}
	}
	return cc
}

// naturalCubicClosed returns the n+1 segments of the closed natural
// spline through x[0]..x[n] (Späth, Spline Algorithms for Curves and
// Surfaces, pp. 19-21)
func naturalCubicClosed(n int, x []float64) []cubic {
	if n < 1 {
		return nil
	}
	w := make([]float64, n+1)
	v := make([]float64, n+1)
	y := make([]float64, n+1)
	dd := make([]float64, n+1)

	z := 1.0 / 4.0
	w[1], v[1] = z, z
	y[0] = z * 3 * (x[1] - x[n])
	hh := 4.0
	ff := 3 * (x[0] - x[n-1])
	gg := 1.0
	for k := 1; k < n; k++ {
		z = 1 / (4 - v[k])
		v[k+1] = z
		w[k+1] = -z * w[k]
		y[k] = z * (3*(x[k+1]-x[k-1]) - y[k-1])
		hh = hh - gg*w[k]
		ff = ff - gg*y[k-1]
		gg = -v[k] * gg
	}
	hh = hh - (gg+1)*(v[n]+w[n])
	y[n] = ff - (gg+1)*y[n-1]

	dd[n] = y[n] / hh
	dd[n-1] = y[n-1] - (v[n]+w[n])*dd[n]
	for k := n - 2; k >= 0; k-- {
		dd[k] = y[k] - v[k+1]*dd[k+1] - w[k+1]*dd[n]
	}

	// the constant terms are stored in single precision
	cc := make([]cubic, n+1)
	for k := 0; k < n; k++ {
		cc[k] = cubic{float64(float32(x[k])), dd[k],
			3*(x[k+1]-x[k]) - 2*dd[k] - dd[k+1],
			2*(x[k]-x[k+1]) + dd[k] + dd[k+1]}
	}
	cc[n] = cubic{float64(float32(x[n])), dd[n],
		3*(x[0]-x[n]) - 2*dd[n] - dd[0],
		2*(x[n]-x[0]) + dd[n] + dd[0]}
	return cc
}

// samples evaluates the spline through the control points mapped with cs.
// Open curves with arrows are shortened so that they end at the base of
// the heads.
func (c *ComplexCurve) samples(cs *geom.MapCoordinates) []geom.PointF {
	n := c.nPoints
	xp := make([]float64, n)
	yp := make([]float64, n)
	for i, v := range c.Vertices() {
		xp[i] = cs.MapXr(float64(v.X), float64(v.Y))
		yp[i] = cs.MapYr(float64(v.X), float64(v.Y))
	}

	var xx, yy []cubic
	if c.closed {
		xx = naturalCubicClosed(n-1, xp)
		yy = naturalCubicClosed(n-1, yp)
	} else {
		xx = naturalCubic(n-1, xp)
		yy = naturalCubic(n-1, yp)
		if len(xx) > 0 && c.arrow.Any() {
			a := c.arrow
			a.prepare(cs)
			if a.Start {
				_, bp := a.inArrow(0, 0,
					geom.Round(xx[0].eval(0)), geom.Round(yy[0].eval(0)),
					geom.Round(xx[0].eval(0.05)), geom.Round(yy[0].eval(0.05)))
				if a.Length > 0 {
					xp[0], yp[0] = float64(bp.X), float64(bp.Y)
				}
			}
			if a.End {
				l := len(xx) - 1
				_, bp := a.inArrow(0, 0,
					geom.Round(xx[l].eval(1)), geom.Round(yy[l].eval(1)),
					geom.Round(xx[l].eval(0.95)), geom.Round(yy[l].eval(0.95)))
				if a.Length > 0 {
					xp[n-1], yp[n-1] = float64(bp.X), float64(bp.Y)
				}
			}
			if a.Length > 0 {
				xx = naturalCubic(n-1, xp)
				yy = naturalCubic(n-1, yp)
			}
		}
	}
	if len(xx) == 0 {
		return nil
	}

	pp := make([]geom.PointF, 0, len(xx)*CurveSteps+1)
	pp = append(pp, geom.PointF{X: xx[0].eval(0), Y: yy[0].eval(0)})
	for i := range xx {
		for j := 1; j <= CurveSteps; j++ {
			u := float64(j) / CurveSteps
			pp = append(pp, geom.PointF{X: xx[i].eval(u), Y: yy[i].eval(u)})
		}
	}
	return pp
}

// polyline is the sampled curve rounded to integer coordinates
func (c *ComplexCurve) polyline(cs *geom.MapCoordinates) []geom.Point {
	pp := c.samples(cs)
	q := make([]geom.Point, len(pp))
	for i, p := range pp {
		q[i] = geom.Point{X: geom.Round(p.X), Y: geom.Round(p.Y)}
	}
	return q
}

func (c *ComplexCurve) Distance(px, py int) int {
	if c.checkText(px, py) {
		return 0
	}
	q := c.polyline(geom.NewMapCoordinates())
	if len(q) == 0 {
		if c.nPoints == 0 {
			return geom.MinDistance
		}
		v := c.points[0]
		return geom.PointToPoint(v.X, v.Y, px, py)
	}
	if c.filled {
		xp, yp := splitXY(q)
		if geom.PointInPolygon(xp, yp, float64(px), float64(py)) {
			return 1
		}
	}
	if c.arrow.Any() && !c.closed {
		a := c.arrow
		a.prepare(geom.NewMapCoordinates())
		first, last := c.points[0], c.points[c.nPoints-1]
		if a.Start {
			if in, _ := a.inArrow(px, py, first.X, first.Y, q[0].X, q[0].Y); in {
				return 1
			}
		}
		if a.End {
			end := q[len(q)-1]
			if in, _ := a.inArrow(px, py, end.X, end.Y, last.X, last.Y); in {
				return 1
			}
		}
	}
	distance := geom.MinDistance
	for i := 0; i+1 < len(q); i++ {
		if d := geom.PointToSegment(q[i].X, q[i].Y, q[i+1].X, q[i+1].Y, px, py); d < distance {
			distance = d
		}
	}
	return distance
}

func (c *ComplexCurve) Track(cs *geom.MapCoordinates) {
	c.trackText(cs)
	q := c.polyline(cs)
	for _, p := range q {
		cs.TrackPoint(float64(p.X), float64(p.Y))
	}
	if len(q) <= 2 || c.closed || !c.arrow.Any() {
		return
	}
	a := c.arrow
	a.prepare(cs)
	if a.Start {
		x, y := mapPoint(cs, c.points[0])
		a.track(cs, x, y, q[1].X, q[1].Y)
	}
	if a.End {
		x, y := mapPoint(cs, c.points[c.nPoints-1])
		a.track(cs, x, y, q[len(q)-2].X, q[len(q)-2].Y)
	}
}

func (c *ComplexCurve) Export(cs *geom.MapCoordinates, e *Exporter) error {
	v := make([]geom.PointF, c.nPoints)
	for i, p := range c.Vertices() {
		v[i] = geom.PointF{
			X: cs.MapXr(float64(p.X), float64(p.Y)),
			Y: cs.MapYr(float64(p.X), float64(p.Y)),
		}
	}
	err := e.ExportCurve(v, c.filled, c.closed, c.layer,
		c.arrow.scaled(cs.XMagnitude()), c.dash)
	if err != nil {
		return err
	}
	return c.exportText(cs, e)
}
