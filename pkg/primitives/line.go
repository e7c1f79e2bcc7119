package primitives

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
)

// Line is a segment, "LI x1 y1 x2 y2 layer", with optional arrow heads
// and dashing
type Line struct {
	base
	arrow Arrow
	dash  int
}

// NewLine creates an empty line whose attached text uses font and size
func NewLine(font string, size int) *Line {
	return &Line{base: newBase(2, true, font, size), arrow: NewArrow()}
}

func newLineAt(x1, y1, x2, y2, layer int, a Arrow, dash int, font string, size int) *Line {
	l := NewLine(font, size)
	l.points[0] = geom.Point{X: x1, Y: y1}
	l.points[1] = geom.Point{X: x2, Y: y2}
	l.setTextAnchors(x1, y1)
	l.arrow = a
	l.dash = checkDash(dash)
	l.SetLayer(layer)
	return l
}

func (l *Line) Kind() Kind { return KindLine }

// Arrow gives access to the arrow heads
func (l *Line) Arrow() *Arrow { return &l.arrow }

// Dash returns the dash style
func (l *Line) Dash() int { return l.dash }

// SetDash changes the dash style, clamped to the known ones
func (l *Line) SetDash(d int) { l.dash = checkDash(d) }

func (l *Line) ParseTokens(tokens []string) error {
	nn := len(tokens)
	if nn < 5 {
		return fmt.Errorf("LI: %w", ErrTooFewTokens)
	}
	c, err := parseCoords(tokens, 1, 4)
	if err != nil {
		return fmt.Errorf("LI: %w", err)
	}
	l.points[0] = geom.Point{X: c[0], Y: c[1]}
	l.points[1] = geom.Point{X: c[2], Y: c[3]}
	l.setTextAnchors(c[0], c[1])
	if nn > 5 {
		l.parseLayer(tokens[5])
	}
	if nn > 6 && tokens[6] == "FCJ" {
		dash, err := parseExtension(&l.arrow, tokens, 7)
		if err != nil {
			return fmt.Errorf("LI: %w", err)
		}
		l.dash = dash
	}
	return nil
}

// parseExtension reads the arrow fields and the dash style of an FCJ row
func parseExtension(a *Arrow, tokens []string, i int) (int, error) {
	i, err := a.parseTokens(tokens, i)
	if err != nil {
		return 0, err
	}
	if i >= len(tokens) {
		return 0, fmt.Errorf("dash style: %w", ErrTooFewTokens)
	}
	dash, err := parseInt(tokens[i], "dash style")
	if err != nil {
		return 0, err
	}
	return checkDash(dash), nil
}

func (l *Line) String(extensions bool) string {
	p0, p1 := l.points[0], l.points[1]
	if !l.hasName() && !l.hasValue() && p0 == p1 {
		return ""
	}
	s := fmt.Sprintf("LI %d %d %d %d %d\n", p0.X, p0.Y, p1.X, p1.Y, l.layer)
	if extensions && (l.arrow.Any() || l.dash > 0 || l.hasName() || l.hasValue()) {
		s += fmt.Sprintf("FCJ %s %d %s\n", l.arrow.Tokens(), l.dash, l.textFlag())
	}
	return s + l.saveText(false)
}

func (l *Line) Distance(px, py int) int {
	if l.checkText(px, py) {
		return 0
	}
	p0, p1 := l.points[0], l.points[1]
	if l.arrow.Any() {
		a := l.arrow
		a.prepare(geom.NewMapCoordinates())
		if a.Start {
			if in, _ := a.inArrow(px, py, p0.X, p0.Y, p1.X, p1.Y); in {
				return 1
			}
		}
		if a.End {
			if in, _ := a.inArrow(px, py, p1.X, p1.Y, p0.X, p0.Y); in {
				return 1
			}
		}
	}
	return geom.PointToSegment(p0.X, p0.Y, p1.X, p1.Y, px, py)
}

func (l *Line) Track(cs *geom.MapCoordinates) {
	l.trackText(cs)
	x1, y1 := mapPoint(cs, l.points[0])
	x2, y2 := mapPoint(cs, l.points[1])

	// very short lines are not drawn, and neither are their heads
	dx, dy := x1-x2, y1-y2
	if !l.arrow.Any() || dx*dx+dy*dy <= 2 {
		return
	}
	a := l.arrow
	a.prepare(cs)
	if a.Start {
		a.track(cs, x1, y1, x2, y2)
	}
	if a.End {
		a.track(cs, x2, y2, x1, y1)
	}
}

func (l *Line) Export(cs *geom.MapCoordinates, e *Exporter) error {
	if err := l.exportText(cs, e); err != nil {
		return err
	}
	x1, y1 := mapPoint(cs, l.points[0])
	x2, y2 := mapPoint(cs, l.points[1])
	return e.ExportLine(float64(x1), float64(y1), float64(x2), float64(y2),
		l.layer, l.arrow.scaled(cs.XMagnitude()), l.dash)
}

// scaled returns the arrow with its sizes converted to pixels
func (a Arrow) scaled(mag float64) Arrow {
	return Arrow{
		Start:     a.Start,
		End:       a.End,
		Style:     a.Style,
		Length:    float32(int(float64(a.Length) * mag)),
		HalfWidth: float32(int(float64(a.HalfWidth) * mag)),
	}
}
