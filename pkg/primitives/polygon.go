package primitives

import (
	"fmt"
	"math"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
)

// Polygon is "PV" (outline) or "PP" (filled), with any number of vertices
type Polygon struct {
	base
	nPoints int
	filled  bool
	dash    int
}

func NewPolygon(font string, size int) *Polygon {
	return &Polygon{base: newBase(0, true, font, size)}
}

func newPolygonAt(filled bool, layer, dash int, font string, size int) *Polygon {
	p := NewPolygon(font, size)
	p.filled = filled
	p.dash = checkDash(dash)
	p.SetLayer(layer)
	return p
}

// setVertices replaces the vertices, the text anchors following the
// last one
func (b *base) setVertices(v []geom.Point) {
	var name, value geom.Point
	if b.nameIdx >= 0 {
		name, value = b.points[b.nameIdx], b.points[b.valueIdx]
	}
	b.points = append(append(make([]geom.Point, 0, len(v)+2), v...), name, value)
	b.nameIdx = len(v)
	b.valueIdx = len(v) + 1
}

// addVertex appends a vertex and moves the text anchors next to it
func (b *base) addVertex(x, y int) {
	v := append([]geom.Point(nil), b.points[:b.nameIdx]...)
	b.setVertices(append(v, geom.Point{X: x, Y: y}))
	b.setTextAnchors(x, y)
}

// parseVertices reads coordinate pairs from tokens[j] until the layer
// token, which is the last one or the one before "FCJ". It returns the
// index of the layer token.
func parseVertices(tokens []string, j int, strict bool) ([]geom.Point, int, error) {
	nn := len(tokens)
	var v []geom.Point
	for j < nn-1 {
		if j+1 < nn-1 && tokens[j+1] == "FCJ" {
			break
		}
		x, err := parseInt(tokens[j], "coordinate")
		if err != nil {
			return nil, j, err
		}
		j++
		if strict && j >= nn-1 {
			return nil, j, fmt.Errorf("odd coordinate count: %w", ErrTooFewTokens)
		}
		y, err := parseInt(tokens[j], "coordinate")
		if err != nil {
			return nil, j, err
		}
		j++
		v = append(v, geom.Point{X: x, Y: y})
	}
	return v, j, nil
}

func (p *Polygon) Kind() Kind { return KindPolygon }

func (p *Polygon) Filled() bool { return p.filled }

func (p *Polygon) Dash() int { return p.dash }

func (p *Polygon) SetDash(d int) { p.dash = checkDash(d) }

// Vertices returns the vertices only
func (p *Polygon) Vertices() []geom.Point { return p.points[:p.nPoints] }

// AddPoint appends a vertex
func (p *Polygon) AddPoint(x, y int) {
	p.addVertex(x, y)
	p.nPoints++
}

func (p *Polygon) ParseTokens(tokens []string) error {
	nn := len(tokens)
	if nn < 6 {
		return fmt.Errorf("%s: %w", tokens[0], ErrTooFewTokens)
	}
	v, j, err := parseVertices(tokens, 1, false)
	if err != nil {
		return fmt.Errorf("%s: %w", tokens[0], err)
	}
	p.setVertices(v)
	p.nPoints = len(v)
	if len(v) > 0 {
		last := v[len(v)-1]
		p.setTextAnchors(last.X, last.Y)
	}
	if nn > j {
		p.parseLayer(tokens[j])
		j++
		if j < nn-1 && tokens[j] == "FCJ" {
			d, err := parseInt(tokens[j+1], "dash style")
			if err != nil {
				return fmt.Errorf("%s: %w", tokens[0], err)
			}
			p.dash = checkDash(d)
		}
	}
	p.filled = tokens[0] == "PP"
	return nil
}

func (p *Polygon) String(extensions bool) string {
	var sb strings.Builder
	if p.filled {
		sb.WriteString("PP ")
	} else {
		sb.WriteString("PV ")
	}
	for _, v := range p.Vertices() {
		fmt.Fprintf(&sb, "%d %d ", v.X, v.Y)
	}
	fmt.Fprintf(&sb, "%d\n", p.layer)
	if extensions && (p.dash > 0 || p.hasName() || p.hasValue()) {
		fmt.Fprintf(&sb, "FCJ %d %s\n", p.dash, p.textFlag())
	}
	sb.WriteString(p.saveText(false))
	return sb.String()
}

// closedDistance is the distance to the nearest side of a closed path,
// starting from the distance to its first vertex
func closedDistance(v []geom.Point, px, py int) int {
	if len(v) == 0 {
		return math.MaxInt32
	}
	dx, dy := float64(px-v[0].X), float64(py-v[0].Y)
	distance := int(math.Sqrt(dx*dx + dy*dy))
	for i := range v {
		next := v[(i+1)%len(v)]
		if d := geom.PointToSegment(v[i].X, v[i].Y, next.X, next.Y, px, py); d < distance {
			distance = d
		}
	}
	return distance
}

func splitXY(v []geom.Point) ([]int, []int) {
	xp := make([]int, len(v))
	yp := make([]int, len(v))
	for i, p := range v {
		xp[i], yp[i] = p.X, p.Y
	}
	return xp, yp
}

func (p *Polygon) Distance(px, py int) int {
	if p.checkText(px, py) {
		return 0
	}
	v := p.Vertices()
	if p.filled {
		xp, yp := splitXY(v)
		if geom.PointInPolygon(xp, yp, float64(px), float64(py)) {
			return 1
		}
	}
	return closedDistance(v, px, py)
}

func (p *Polygon) Track(cs *geom.MapCoordinates) {
	p.trackText(cs)
	for _, v := range p.Vertices() {
		mapPoint(cs, v)
	}
}

func (p *Polygon) Export(cs *geom.MapCoordinates, e *Exporter) error {
	if err := p.exportText(cs, e); err != nil {
		return err
	}
	v := make([]geom.PointF, p.nPoints)
	for i, q := range p.Vertices() {
		x, y := mapPoint(cs, q)
		v[i] = geom.PointF{X: float64(x), Y: float64(y)}
	}
	return e.ExportPolygon(v, p.filled, p.layer, p.dash)
}
