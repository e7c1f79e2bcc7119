package primitives

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
)

// Oval is an ellipse inscribed in a box, "EV" (outline) or "EP" (filled)
type Oval struct {
	base
	filled bool
	dash   int
}

func NewOval(font string, size int) *Oval {
	return &Oval{base: newBase(2, true, font, size)}
}

func newOvalAt(x1, y1, x2, y2 int, filled bool, layer, dash int, font string, size int) *Oval {
	o := NewOval(font, size)
	o.points[0] = geom.Point{X: x1, Y: y1}
	o.points[1] = geom.Point{X: x2, Y: y2}
	o.setTextAnchors(x1, y1)
	o.filled = filled
	o.dash = checkDash(dash)
	o.SetLayer(layer)
	return o
}

func (o *Oval) Kind() Kind { return KindOval }

func (o *Oval) Filled() bool { return o.filled }

func (o *Oval) Dash() int { return o.dash }

func (o *Oval) SetDash(d int) { o.dash = checkDash(d) }

func (o *Oval) ParseTokens(tokens []string) error {
	dash, err := parseBox(&o.base, tokens)
	if err != nil {
		return fmt.Errorf("%s: %w", tokens[0], err)
	}
	o.dash = dash
	o.filled = tokens[0] == "EP"
	return nil
}

func (o *Oval) String(extensions bool) string {
	cmd := "EV"
	if o.filled {
		cmd = "EP"
	}
	return boxString(&o.base, cmd, o.dash, extensions)
}

func (o *Oval) Distance(px, py int) int {
	if o.checkText(px, py) {
		return 0
	}
	x, y, w, h := o.normalized()
	if o.filled {
		if geom.PointInEllipse(x, y, w, h, px, py) {
			return 0
		}
		return 1000
	}
	return geom.PointToEllipse(x, y, w, h, px, py)
}

func (o *Oval) Track(cs *geom.MapCoordinates) {
	o.trackText(cs)
	mapPoint(cs, o.points[0])
	mapPoint(cs, o.points[1])
}

func (o *Oval) Export(cs *geom.MapCoordinates, e *Exporter) error {
	if err := o.exportText(cs, e); err != nil {
		return err
	}
	x1, y1 := mapPoint(cs, o.points[0])
	x2, y2 := mapPoint(cs, o.points[1])
	return e.ExportOval(x1, y1, x2, y2, o.filled, o.layer, o.dash)
}
