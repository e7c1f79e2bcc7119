package primitives

import (
	"fmt"
	"math"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
)

// PCBLine is a copper track, "PL x1 y1 x2 y2 width layer"
type PCBLine struct {
	base
	width float32
}

func NewPCBLine(font string, size int) *PCBLine {
	return &PCBLine{base: newBase(2, true, font, size)}
}

func newPCBLineAt(x1, y1, x2, y2, width, layer int, font string, size int) *PCBLine {
	l := NewPCBLine(font, size)
	l.points[0] = geom.Point{X: x1, Y: y1}
	l.points[1] = geom.Point{X: x2, Y: y2}
	l.setTextAnchors(x1, y1)
	l.width = float32(width)
	l.SetLayer(layer)
	return l
}

func (l *PCBLine) Kind() Kind { return KindPCBLine }

// Width returns the track width in logical units
func (l *PCBLine) Width() float32 { return l.width }

func (l *PCBLine) ParseTokens(tokens []string) error {
	nn := len(tokens)
	if nn < 6 {
		return fmt.Errorf("PL: %w", ErrTooFewTokens)
	}
	c, err := parseCoords(tokens, 1, 4)
	if err != nil {
		return fmt.Errorf("PL: %w", err)
	}
	w, err := strconv.ParseFloat(tokens[5], 32)
	if err != nil {
		return fmt.Errorf("PL: invalid width: %w", err)
	}
	l.points[0] = geom.Point{X: c[0], Y: c[1]}
	l.points[1] = geom.Point{X: c[2], Y: c[3]}
	l.setTextAnchors(c[0], c[1])
	l.width = float32(w)
	if nn > 6 {
		l.parseLayer(tokens[6])
	}
	return nil
}

func (l *PCBLine) String(extensions bool) string {
	p0, p1 := l.points[0], l.points[1]
	return fmt.Sprintf("PL %d %d %d %d %s %d\n", p0.X, p0.Y, p1.X, p1.Y,
		roundIntelligently(float64(l.width)), l.layer) + l.saveText(extensions)
}

func (l *PCBLine) Distance(px, py int) int {
	if l.checkText(px, py) {
		return 0
	}
	p0, p1 := l.points[0], l.points[1]
	d := int(float32(geom.PointToSegment(p0.X, p0.Y, p1.X, p1.Y, px, py)) - l.width/2)
	return max(d, 0)
}

func (l *PCBLine) Track(cs *geom.MapCoordinates) {
	l.trackText(cs)
	p0, p1 := l.points[0], l.points[1]
	x1, y1 := mapPoint(cs, p0)
	x2, y2 := mapPoint(cs, p1)
	w := float64(l.width)
	wi := math.Abs(cs.MapXr(float64(p0.X), float64(p0.Y)) -
		cs.MapXr(float64(p0.X)+w, float64(p0.Y)+w))
	half := wi / 2
	cs.TrackPoint(float64(int(float64(min(x1, x2))-half)), float64(int(float64(min(y1, y2))-half)))
	cs.TrackPoint(float64(int(float64(max(x1, x2))+half)), float64(int(float64(max(y1, y2))+half)))
}

func (l *PCBLine) Export(cs *geom.MapCoordinates, e *Exporter) error {
	if err := l.exportText(cs, e); err != nil {
		return err
	}
	x1, y1 := mapPoint(cs, l.points[0])
	x2, y2 := mapPoint(cs, l.points[1])
	return e.ExportPCBLine(x1, y1, x2, y2,
		int(float64(l.width)*cs.XMagnitude()), l.layer)
}

// Pad styles
const (
	PadOval = iota
	PadRectangle
	PadRoundedRectangle
)

// PCBPad is "PA x y sx sy drill style layer"
type PCBPad struct {
	base
	sx, sy int
	drill  int
	style  int

	// OnlyHole exports just the drill of the pad
	OnlyHole bool
}

func NewPCBPad(font string, size int) *PCBPad {
	return &PCBPad{base: newBase(1, true, font, size)}
}

func newPCBPadAt(x, y, sx, sy, drill, style, layer int, font string, size int) *PCBPad {
	p := NewPCBPad(font, size)
	p.points[0] = geom.Point{X: x, Y: y}
	p.setTextAnchors(x, y)
	p.sx, p.sy, p.drill, p.style = sx, sy, drill, style
	p.SetLayer(layer)
	return p
}

func (p *PCBPad) Kind() Kind { return KindPCBPad }

// Size returns the pad size in logical units
func (p *PCBPad) Size() (int, int) { return p.sx, p.sy }

func (p *PCBPad) Drill() int { return p.drill }

func (p *PCBPad) Style() int { return p.style }

func (p *PCBPad) ParseTokens(tokens []string) error {
	nn := len(tokens)
	if nn < 7 {
		return fmt.Errorf("PA: %w", ErrTooFewTokens)
	}
	c, err := parseCoords(tokens, 1, 6)
	if err != nil {
		return fmt.Errorf("PA: %w", err)
	}
	p.points[0] = geom.Point{X: c[0], Y: c[1]}
	p.setTextAnchors(c[0], c[1])
	p.sx, p.sy, p.drill, p.style = c[2], c[3], c[4], c[5]
	if nn > 7 {
		p.parseLayer(tokens[7])
	}
	return nil
}

func (p *PCBPad) String(extensions bool) string {
	q := p.points[0]
	return fmt.Sprintf("PA %d %d %d %d %d %d %d\n", q.X, q.Y, p.sx, p.sy,
		p.drill, p.style, p.layer) + p.saveText(extensions)
}

func (p *PCBPad) Distance(px, py int) int {
	if p.checkText(px, py) {
		return 0
	}
	q := p.points[0]
	return max(geom.PointToPoint(q.X, q.Y, px, py)-min(p.sx, p.sy)/2, 0)
}

// Rotate also swaps the pad sizes
func (p *PCBPad) Rotate(ccw bool, cx, cy int) {
	p.base.Rotate(ccw, cx, cy)
	p.sx, p.sy = p.sy, p.sx
}

func (p *PCBPad) Track(cs *geom.MapCoordinates) {
	p.trackText(cs)
	q := p.points[0]
	x, y := float64(q.X), float64(q.Y)
	xa := cs.MapXi(x, y, false)
	ya := cs.MapYi(x, y, false)
	rx := absInt(xa-cs.MapXi(x+float64(p.sx), y+float64(p.sy), false)) / 2
	ry := absInt(ya-cs.MapYi(x+float64(p.sx), y+float64(p.sy), false)) / 2
	cs.TrackPoint(float64(xa-rx), float64(ya-ry))
	cs.TrackPoint(float64(xa+rx), float64(ya+ry))
}

func (p *PCBPad) Export(cs *geom.MapCoordinates, e *Exporter) error {
	if err := p.exportText(cs, e); err != nil {
		return err
	}
	q := p.points[0]
	x, y := mapPoint(cs, q)
	far := geom.Point{X: q.X + p.sx, Y: q.Y + p.sy}
	fx, fy := mapPoint(cs, far)
	return e.ExportPCBPad(x, y, p.style, absInt(fx-x), absInt(fy-y),
		int(float64(p.drill)*cs.XMagnitude()), p.layer, p.OnlyHole)
}

// Connection is a junction dot, "SA x y layer"
type Connection struct {
	base
}

func NewConnection(font string, size int) *Connection {
	return &Connection{base: newBase(1, true, font, size)}
}

func newConnectionAt(x, y, layer int, font string, size int) *Connection {
	c := NewConnection(font, size)
	c.points[0] = geom.Point{X: x, Y: y}
	c.setTextAnchors(x, y)
	c.SetLayer(layer)
	return c
}

func (c *Connection) Kind() Kind { return KindConnection }

func (c *Connection) ParseTokens(tokens []string) error {
	nn := len(tokens)
	if nn < 3 {
		return fmt.Errorf("SA: %w", ErrTooFewTokens)
	}
	v, err := parseCoords(tokens, 1, 2)
	if err != nil {
		return fmt.Errorf("SA: %w", err)
	}
	c.points[0] = geom.Point{X: v[0], Y: v[1]}
	c.setTextAnchors(v[0], v[1])
	if nn > 3 {
		c.parseLayer(tokens[3])
	}
	return nil
}

func (c *Connection) String(extensions bool) string {
	p := c.points[0]
	return fmt.Sprintf("SA %d %d %d\n", p.X, p.Y, c.layer) + c.saveText(extensions)
}

func (c *Connection) Distance(px, py int) int {
	if c.checkText(px, py) {
		return 0
	}
	p := c.points[0]
	return geom.PointToPoint(p.X, p.Y, px, py) - 1
}

func (c *Connection) Track(cs *geom.MapCoordinates) {
	c.trackText(cs)
	mapPoint(cs, c.points[0])
}

func (c *Connection) Export(cs *geom.MapCoordinates, e *Exporter) error {
	if err := c.exportText(cs, e); err != nil {
		return err
	}
	x, y := mapPoint(cs, c.points[0])
	return e.ExportConnection(x, y, c.layer)
}
