package primitives

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
)

// Bezier is a cubic Bézier curve given by four control points
type Bezier struct {
	base
	arrow Arrow
	dash  int
}

// NewBezier creates an empty curve
func NewBezier(font string, size int) *Bezier {
	return &Bezier{base: newBase(4, true, font, size), arrow: NewArrow()}
}

func newBezierAt(c [8]int, layer int, a Arrow, dash int, font string, size int) *Bezier {
	b := NewBezier(font, size)
	for i := 0; i < 4; i++ {
		b.points[i] = geom.Point{X: c[2*i], Y: c[2*i+1]}
	}
	b.setTextAnchors(c[0], c[1])
	b.arrow = a
	b.dash = checkDash(dash)
	b.SetLayer(layer)
	return b
}

func (b *Bezier) Kind() Kind { return KindBezier }

func (b *Bezier) Arrow() *Arrow { return &b.arrow }

func (b *Bezier) Dash() int { return b.dash }

func (b *Bezier) SetDash(d int) { b.dash = checkDash(d) }

func (b *Bezier) ParseTokens(tokens []string) error {
	nn := len(tokens)
	if nn < 9 {
		return fmt.Errorf("BE: %w", ErrTooFewTokens)
	}
	c, err := parseCoords(tokens, 1, 8)
	if err != nil {
		return fmt.Errorf("BE: %w", err)
	}
	for i := 0; i < 4; i++ {
		b.points[i] = geom.Point{X: c[2*i], Y: c[2*i+1]}
	}
	b.setTextAnchors(c[0], c[1])
	if nn > 9 {
		b.parseLayer(tokens[9])
	}
	if nn > 10 && tokens[10] == "FCJ" {
		dash, err := parseExtension(&b.arrow, tokens, 11)
		if err != nil {
			return fmt.Errorf("BE: %w", err)
		}
		b.dash = dash
	}
	return nil
}

func (b *Bezier) String(extensions bool) string {
	p := b.points
	s := fmt.Sprintf("BE %d %d %d %d %d %d %d %d %d\n",
		p[0].X, p[0].Y, p[1].X, p[1].Y, p[2].X, p[2].Y, p[3].X, p[3].Y, b.layer)
	if extensions && (b.arrow.Any() || b.dash > 0 || b.hasName() || b.hasValue()) {
		s += fmt.Sprintf("FCJ %s %d %s\n", b.arrow.Tokens(), b.dash, b.textFlag())
	}
	return s + b.saveText(false)
}

func (b *Bezier) Distance(px, py int) int {
	if b.checkText(px, py) {
		return 0
	}
	p := b.points
	p0, p3 := p[0], p[3]
	if b.arrow.Any() {
		a := b.arrow
		a.prepare(geom.NewMapCoordinates())
		var hit bool
		if a.Start {
			in, bp := a.inArrow(px, py, p[0].X, p[0].Y, p[1].X, p[1].Y)
			if a.Length > 0 {
				p0 = bp
			}
			hit = hit || in
		}
		if a.End {
			in, bp := a.inArrow(px, py, p[3].X, p[3].Y, p[2].X, p[2].Y)
			if a.Length > 0 {
				p3 = bp
			}
			hit = hit || in
		}
		if hit {
			return 1
		}
	}
	return geom.PointToBezier(p0.X, p0.Y, p[1].X, p[1].Y, p[2].X, p[2].Y,
		p3.X, p3.Y, px, py)
}

// arrowDirection picks the first control point distinct from points[from]
// following order, so degenerate curves still get oriented heads
func (b *Bezier) arrowDirection(from int, order ...int) geom.Point {
	for _, i := range order[:len(order)-1] {
		if b.points[i] != b.points[from] {
			return b.points[i]
		}
	}
	return b.points[order[len(order)-1]]
}

func (b *Bezier) Track(cs *geom.MapCoordinates) {
	b.trackText(cs)
	for _, p := range b.points[:4] {
		mapPoint(cs, p)
	}
	if !b.arrow.Any() {
		return
	}
	a := b.arrow
	a.prepare(cs)
	if a.Start {
		x, y := mapPoint(cs, b.points[0])
		xc, yc := mapPoint(cs, b.arrowDirection(0, 1, 2, 3))
		a.track(cs, x, y, xc, yc)
	}
	if a.End {
		x, y := mapPoint(cs, b.points[3])
		xc, yc := mapPoint(cs, b.arrowDirection(3, 2, 1, 0))
		a.track(cs, x, y, xc, yc)
	}
}

func (b *Bezier) Export(cs *geom.MapCoordinates, e *Exporter) error {
	if err := b.exportText(cs, e); err != nil {
		return err
	}
	var c [8]int
	for i, p := range b.points[:4] {
		c[2*i], c[2*i+1] = mapPoint(cs, p)
	}
	return e.ExportBezier(c, b.layer, b.arrow.scaled(cs.XMagnitude()), b.dash)
}
