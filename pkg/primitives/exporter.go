package primitives

import (
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/library"
)

// Exporter writes mapped primitives back as FidoCadJ text. Coordinates
// given to it are already in the target coordinate system, a fractional
// part is truncated.
type Exporter struct {
	w io.Writer

	// Extensions writes FCJ rows and treats the FidoCadJ libraries as
	// standard
	Extensions bool
	// SplitStandard expands every macro, including the standard ones
	SplitStandard bool

	// Font of the text attached to exported primitives
	TextFont     string
	TextFontSize int
}

// NewExporter writes to w with extensions enabled
func NewExporter(w io.Writer) *Exporter {
	return &Exporter{
		w:            w,
		Extensions:   true,
		TextFont:     DefaultTextFont,
		TextFontSize: 3,
	}
}

func (e *Exporter) write(p Primitive) error {
	if _, err := io.WriteString(e.w, p.String(e.Extensions)); err != nil {
		return fmt.Errorf("failed to export %s: %w", p.Kind(), err)
	}
	return nil
}

// Start writes the file tag followed by header, usually the layer and
// default configuration rows of the drawing
func (e *Exporter) Start(header string) error {
	if _, err := io.WriteString(e.w, "[FIDOCAD]\n"+header); err != nil {
		return fmt.Errorf("failed to export header: %w", err)
	}
	return nil
}

// ExportAdvText writes a TY row. sizeX is the character width, sizeY the
// height.
func (e *Exporter) ExportAdvText(x, y, sizeX, sizeY int, font string, style, orientation, layer int, text string) error {
	return e.write(newAdvTextAt(x, y, sizeX, sizeY, font, orientation, style, text, layer))
}

func (e *Exporter) ExportBezier(c [8]int, layer int, a Arrow, dash int) error {
	return e.write(newBezierAt(c, layer, a, dash, e.TextFont, e.TextFontSize))
}

func (e *Exporter) ExportConnection(x, y, layer int) error {
	return e.write(newConnectionAt(x, y, layer, e.TextFont, e.TextFontSize))
}

func (e *Exporter) ExportLine(x1, y1, x2, y2 float64, layer int, a Arrow, dash int) error {
	return e.write(newLineAt(int(x1), int(y1), int(x2), int(y2), layer, a, dash,
		e.TextFont, e.TextFontSize))
}

func (e *Exporter) ExportOval(x1, y1, x2, y2 int, filled bool, layer, dash int) error {
	return e.write(newOvalAt(x1, y1, x2, y2, filled, layer, dash, e.TextFont, e.TextFontSize))
}

func (e *Exporter) ExportRectangle(x1, y1, x2, y2 int, filled bool, layer, dash int) error {
	return e.write(newRectangleAt(x1, y1, x2, y2, filled, layer, dash, e.TextFont, e.TextFontSize))
}

func (e *Exporter) ExportPCBLine(x1, y1, x2, y2, width, layer int) error {
	return e.write(newPCBLineAt(x1, y1, x2, y2, width, layer, e.TextFont, e.TextFontSize))
}

// ExportPCBPad writes nothing when only the hole is wanted
func (e *Exporter) ExportPCBPad(x, y, style, sx, sy, drill, layer int, onlyHole bool) error {
	if onlyHole {
		return nil
	}
	return e.write(newPCBPadAt(x, y, sx, sy, drill, style, layer, e.TextFont, e.TextFontSize))
}

func (e *Exporter) ExportPolygon(v []geom.PointF, filled bool, layer, dash int) error {
	p := newPolygonAt(filled, layer, dash, e.TextFont, e.TextFontSize)
	for _, q := range v {
		p.AddPoint(int(q.X), int(q.Y))
	}
	return e.write(p)
}

func (e *Exporter) ExportCurve(v []geom.PointF, filled, closed bool, layer int, a Arrow, dash int) error {
	c := newComplexCurveAt(filled, closed, layer, a, dash, e.TextFont, e.TextFontSize)
	for _, q := range v {
		c.AddPoint(int(q.X), int(q.Y))
	}
	return e.write(c)
}

// isStandardMacro reports whether a macro can be written as a single MC
// row. Prefixed libraries only count when extensions are on.
func (e *Exporter) isStandardMacro(key string) bool {
	if !strings.Contains(key, ".") {
		return true
	}
	return e.Extensions && library.IsStandard(key)
}

// ExportMacro writes standard macros as an MC row and reports whether it
// did. Other macros must be exported as their primitives.
func (e *Exporter) ExportMacro(x, y int, mirror bool, orientation int, key, name string,
	xn, yn int, value string, xv, yv int, font string, fontSize int) (bool, error) {
	if e.SplitStandard || !e.isStandardMacro(key) {
		return false, nil
	}
	m := NewMacro(&Env{TextFont: font, TextFontSize: fontSize})
	m.points[0] = geom.Point{X: x, Y: y}
	m.points[m.nameIdx] = geom.Point{X: xn, Y: yn}
	m.points[m.valueIdx] = geom.Point{X: xv, Y: yv}
	m.o = orientation / 90
	m.m = mirror
	m.key = key
	m.name, m.value = name, value
	return true, e.write(m)
}
