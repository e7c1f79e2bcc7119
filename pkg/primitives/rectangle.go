package primitives

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
)

// Rectangle is "RV" (outline) or "RP" (filled)
type Rectangle struct {
	base
	filled bool
	dash   int
}

func NewRectangle(font string, size int) *Rectangle {
	return &Rectangle{base: newBase(2, true, font, size)}
}

func newRectangleAt(x1, y1, x2, y2 int, filled bool, layer, dash int, font string, size int) *Rectangle {
	r := NewRectangle(font, size)
	r.points[0] = geom.Point{X: x1, Y: y1}
	r.points[1] = geom.Point{X: x2, Y: y2}
	r.setTextAnchors(x1, y1)
	r.filled = filled
	r.dash = checkDash(dash)
	r.SetLayer(layer)
	return r
}

func (r *Rectangle) Kind() Kind { return KindRectangle }

func (r *Rectangle) Filled() bool { return r.filled }

func (r *Rectangle) Dash() int { return r.dash }

func (r *Rectangle) SetDash(d int) { r.dash = checkDash(d) }

// parseBox reads the "XX x1 y1 x2 y2 layer [FCJ dash text]" rows shared by
// rectangles and ovals
func parseBox(b *base, tokens []string) (dash int, err error) {
	nn := len(tokens)
	if nn < 5 {
		return 0, ErrTooFewTokens
	}
	c, err := parseCoords(tokens, 1, 4)
	if err != nil {
		return 0, err
	}
	b.points[0] = geom.Point{X: c[0], Y: c[1]}
	b.points[1] = geom.Point{X: c[2], Y: c[3]}
	b.setTextAnchors(c[0], c[1])
	if nn > 5 {
		b.parseLayer(tokens[5])
	}
	if nn > 6 && tokens[6] == "FCJ" {
		if nn < 8 {
			return 0, fmt.Errorf("dash style: %w", ErrTooFewTokens)
		}
		d, err := parseInt(tokens[7], "dash style")
		if err != nil {
			return 0, err
		}
		dash = checkDash(d)
	}
	return dash, nil
}

// boxString writes a two point primitive with its optional FCJ row
func boxString(b *base, cmd string, dash int, extensions bool) string {
	p0, p1 := b.points[0], b.points[1]
	s := fmt.Sprintf("%s %d %d %d %d %d\n", cmd, p0.X, p0.Y, p1.X, p1.Y, b.layer)
	if extensions && (dash > 0 || b.hasName() || b.hasValue()) {
		s += fmt.Sprintf("FCJ %d %s\n", dash, b.textFlag())
	}
	return s + b.saveText(false)
}

// normalized returns the top left corner and the size of the box
func (b *base) normalized() (x, y, w, h int) {
	p0, p1 := b.points[0], b.points[1]
	x, y = min(p0.X, p1.X), min(p0.Y, p1.Y)
	return x, y, max(p0.X, p1.X) - x, max(p0.Y, p1.Y) - y
}

func (r *Rectangle) ParseTokens(tokens []string) error {
	dash, err := parseBox(&r.base, tokens)
	if err != nil {
		return fmt.Errorf("%s: %w", tokens[0], err)
	}
	r.dash = dash
	r.filled = tokens[0] == "RP"
	return nil
}

func (r *Rectangle) String(extensions bool) string {
	cmd := "RV"
	if r.filled {
		cmd = "RP"
	}
	return boxString(&r.base, cmd, r.dash, extensions)
}

func (r *Rectangle) Distance(px, py int) int {
	if r.checkText(px, py) {
		return 0
	}
	x, y, w, h := r.normalized()
	if r.filled {
		if geom.PointInRectangle(x, y, w, h, px, py) {
			return 1
		}
		return 1000
	}
	return geom.PointToRectangle(x, y, w, h, px, py)
}

func (r *Rectangle) Track(cs *geom.MapCoordinates) {
	r.trackText(cs)
	mapPoint(cs, r.points[0])
	mapPoint(cs, r.points[1])
}

func (r *Rectangle) Export(cs *geom.MapCoordinates, e *Exporter) error {
	if err := r.exportText(cs, e); err != nil {
		return err
	}
	x1, y1 := mapPoint(cs, r.points[0])
	x2, y2 := mapPoint(cs, r.points[1])
	return e.ExportRectangle(x1, y1, x2, y2, r.filled, r.layer, r.dash)
}
