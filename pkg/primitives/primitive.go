// Package primitives holds the drawing primitives of the FidoCadJ format.
// Every primitive parses its own token row, writes itself back as text,
// computes hit distances in logical units and tracks its extent through a
// geom.MapCoordinates.
package primitives

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceFCD/pkg/layers"
)

var (
	ErrTooFewTokens = errors.New("too few tokens")
	ErrUnknownMacro = errors.New("unrecognized macro")
	ErrMacroDepth   = errors.New("macros nested too deeply")
)

const (
	// DefaultTextFont is the font written as "*" in TY rows
	DefaultTextFont = "Courier New"

	// DefaultFontSize is the size of attached name and value text
	DefaultFontSize = 4

	// DashNumber is the count of dash styles, 0 being a solid line
	DashNumber = 5
)

// Kind identifies the type of a primitive
type Kind int

const (
	KindLine Kind = iota
	KindBezier
	KindRectangle
	KindOval
	KindPolygon
	KindComplexCurve
	KindPCBLine
	KindPCBPad
	KindConnection
	KindAdvText
	KindMacro
)

var kindNames = [...]string{
	KindLine:         "line",
	KindBezier:       "bezier",
	KindRectangle:    "rectangle",
	KindOval:         "oval",
	KindPolygon:      "polygon",
	KindComplexCurve: "complex curve",
	KindPCBLine:      "pcb line",
	KindPCBPad:       "pcb pad",
	KindConnection:   "connection",
	KindAdvText:      "text",
	KindMacro:        "macro",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Primitive is one drawing element
type Primitive interface {
	Kind() Kind

	// ParseTokens reads a token row, tokens[0] being the command. An
	// extension row may follow the base row, starting with "FCJ".
	ParseTokens(tokens []string) error

	// String writes the primitive back in FidoCadJ format, one or more
	// lines each ending with a newline.
	String(extensions bool) string

	// Distance is the distance in logical units from the primitive to a
	// point. Filled shapes give a binary answer.
	Distance(px, py int) int

	// Points returns the control points followed by the name and value
	// anchors, if the primitive has them. The slice is owned by the
	// primitive.
	Points() []geom.Point

	Layer() int
	SetLayer(l int)
	ContainsLayer(l int) bool
	MaxLayer() int

	Name() string
	Value() string
	SetName(s string)
	SetValue(s string)
	SetNameTokens(tokens []string) error
	SetValueTokens(tokens []string) error

	// Track maps every point of the primitive through cs, so that the
	// extrema of cs grow to include it.
	Track(cs *geom.MapCoordinates)

	// Export writes the primitive, mapped through cs, to e
	Export(cs *geom.MapCoordinates, e *Exporter) error

	Move(dx, dy int)
	Mirror(xPos int)
	Rotate(ccw bool, cx, cy int)

	// SelectRect selects the primitive if one of its handles lies inside
	// the rectangle.
	SelectRect(x, y, w, h int) bool
	Selected() bool
	SetSelected(s bool)
}

// base holds what every primitive shares
type base struct {
	points   []geom.Point
	nameIdx  int // index of the name anchor in points, -1 if none
	valueIdx int

	layer    int
	name     string
	value    string
	font     string
	fontSize int
	selected bool
}

func newBase(nPoints int, hasText bool, font string, size int) base {
	b := base{nameIdx: -1, valueIdx: -1, font: font, fontSize: size}
	if hasText {
		b.nameIdx = nPoints
		b.valueIdx = nPoints + 1
		nPoints += 2
	}
	b.points = make([]geom.Point, nPoints)
	if b.font == "" {
		b.font = DefaultTextFont
	}
	if b.fontSize <= 0 {
		b.fontSize = 1
	}
	return b
}

func (b *base) Points() []geom.Point { return b.points }

func (b *base) Layer() int { return b.layer }

// SetLayer ignores invalid layer numbers
func (b *base) SetLayer(l int) {
	if l >= 0 && l < layers.MaxLayers {
		b.layer = l
	}
}

func (b *base) ContainsLayer(l int) bool { return l == b.layer }

func (b *base) MaxLayer() int { return b.layer }

func (b *base) Name() string  { return b.name }
func (b *base) Value() string { return b.value }

func (b *base) SetName(s string)  { b.name = s }
func (b *base) SetValue(s string) { b.value = s }

func (b *base) Selected() bool     { return b.selected }
func (b *base) SetSelected(s bool) { b.selected = s }

// Font returns the font of the attached text
func (b *base) Font() string { return b.font }

// FontSize returns the size of the attached text
func (b *base) FontSize() int { return b.fontSize }

func (b *base) hasName() bool  { return b.name != "" }
func (b *base) hasValue() bool { return b.value != "" }

// textFlag is the last token of an FCJ row, "1" when TY rows follow
func (b *base) textFlag() string {
	if b.hasName() || b.hasValue() {
		return "1"
	}
	return "0"
}

// parseLayer reads a layer token. Unreadable or out of range values give
// layer 0.
func (b *base) parseLayer(tok string) {
	l, err := strconv.Atoi(tok)
	if err != nil || l < 0 || l >= layers.MaxLayers {
		l = 0
	}
	b.layer = l
}

// setTextAnchors places the name and value anchors below and to the
// right of (x,y)
func (b *base) setTextAnchors(x, y int) {
	if b.nameIdx < 0 {
		return
	}
	b.points[b.nameIdx] = geom.Point{X: x + 5, Y: y + 5}
	b.points[b.valueIdx] = geom.Point{X: x + 5, Y: y + 10}
}

// validHandle reports whether point i can be grabbed. Text anchors only
// count when their text is present.
func (b *base) validHandle(i int) bool {
	switch i {
	case b.nameIdx:
		return b.hasName()
	case b.valueIdx:
		return b.hasValue()
	}
	return true
}

func (b *base) Move(dx, dy int) {
	for i := range b.points {
		b.points[i].X += dx
		b.points[i].Y += dy
	}
}

func (b *base) Mirror(xPos int) {
	for i := range b.points {
		b.points[i].X = 2*xPos - b.points[i].X
	}
}

// Rotate turns every point by a quarter around (cx,cy)
func (b *base) Rotate(ccw bool, cx, cy int) {
	for i, p := range b.points {
		if ccw {
			b.points[i] = geom.Point{X: cx + p.Y - cy, Y: cy - (p.X - cx)}
		} else {
			b.points[i] = geom.Point{X: cx - (p.Y - cy), Y: cy + p.X - cx}
		}
	}
}

func (b *base) SelectRect(x, y, w, h int) bool {
	for i, p := range b.points {
		if !b.validHandle(i) {
			continue
		}
		if x <= p.X && p.X < x+w && y <= p.Y && p.Y < y+h {
			b.selected = true
			return true
		}
	}
	return false
}

// textBox is the logical size of the name or value text
func (b *base) textBox(s string) (w, h int) {
	m := measureText(s, float64(int(float64(b.fontSize)*12/7+.5)))
	return m.width, m.ascent + m.descent
}

// checkText reports whether (px,py) falls on the name or value text
func (b *base) checkText(px, py int) bool {
	if b.nameIdx < 0 {
		return false
	}
	if b.hasName() {
		w, h := b.textBox(b.name)
		p := b.points[b.nameIdx]
		if geom.PointInRectangle(p.X, p.Y, w, h, px, py) {
			return true
		}
	}
	if b.hasValue() {
		w, h := b.textBox(b.value)
		p := b.points[b.valueIdx]
		if geom.PointInRectangle(p.X, p.Y, w, h, px, py) {
			return true
		}
	}
	return false
}

// trackText tracks the boxes covered by the name and value text
func (b *base) trackText(cs *geom.MapCoordinates) {
	if b.nameIdx < 0 || (!b.hasName() && !b.hasValue()) {
		return
	}
	np, vp := b.points[b.nameIdx], b.points[b.valueIdx]
	xa := cs.MapX(float64(np.X), float64(np.Y))
	ya := cs.MapY(float64(np.X), float64(np.Y))
	xb := cs.MapX(float64(vp.X), float64(vp.Y))
	yb := cs.MapY(float64(vp.X), float64(vp.Y))

	size := float64(int(float64(b.fontSize)*12*cs.YMagnitude()/7 + .5))
	nm := measureText(b.name, size)
	vm := measureText(b.value, size)
	th := nm.ascent + nm.descent

	cs.TrackPoint(float64(xa), float64(ya))
	cs.TrackPoint(float64(xa+nm.width), float64(ya+th))
	cs.TrackPoint(float64(xb), float64(yb))
	cs.TrackPoint(float64(xb+vm.width), float64(yb+th))
}

// fontToken encodes a font name for a TY row
func fontToken(font string) string {
	if font == DefaultTextFont {
		return "*"
	}
	return strings.ReplaceAll(font, " ", "++")
}

// fontFromToken decodes the font field of a TY row
func fontFromToken(tok string) string {
	if tok == "*" {
		return DefaultTextFont
	}
	return strings.ReplaceAll(tok, "++", " ")
}

// saveText writes the TY rows of the name and value, preceded by an FCJ
// row when extensions is set
func (b *base) saveText(extensions bool) string {
	if b.nameIdx < 0 || (!b.hasName() && !b.hasValue()) {
		return ""
	}
	var sb strings.Builder
	if extensions {
		sb.WriteString("FCJ\n")
	}
	font := fontToken(b.font)
	np, vp := b.points[b.nameIdx], b.points[b.valueIdx]
	fmt.Fprintf(&sb, "TY %d %d %d %d 0 0 %d %s %s\n",
		np.X, np.Y, b.fontSize*4/3, b.fontSize, b.layer, font, b.name)
	fmt.Fprintf(&sb, "TY %d %d %d %d 0 0 %d %s %s\n",
		vp.X, vp.Y, b.fontSize*4/3, b.fontSize, b.layer, font, b.value)
	return sb.String()
}

// exportText sends the name and value to the exporter
func (b *base) exportText(cs *geom.MapCoordinates, e *Exporter) error {
	if b.nameIdx < 0 {
		return nil
	}
	fs := float64(b.fontSize)
	size := cs.MapXr(fs, fs) - cs.MapXr(0, 0)
	if size < 0 {
		size = -size
	}
	for _, t := range []struct {
		idx  int
		text string
	}{{b.nameIdx, b.name}, {b.valueIdx, b.value}} {
		if t.text == "" {
			continue
		}
		p := b.points[t.idx]
		err := e.ExportAdvText(cs.MapX(float64(p.X), float64(p.Y)),
			cs.MapY(float64(p.X), float64(p.Y)),
			int(size), int(size*12/7+.5), b.font, 0, 0, b.layer, t.text)
		if err != nil {
			return err
		}
	}
	return nil
}

// parseTextRow reads a TY row attached to a primitive and returns its
// anchor and text
func parseTextRow(tokens []string) (geom.Point, string, error) {
	if len(tokens) < 9 || tokens[0] != "TY" {
		return geom.Point{}, "", fmt.Errorf("name or value: %w", ErrTooFewTokens)
	}
	x, err := parseInt(tokens[1], "x")
	if err != nil {
		return geom.Point{}, "", err
	}
	y, err := parseInt(tokens[2], "y")
	if err != nil {
		return geom.Point{}, "", err
	}
	return geom.Point{X: x, Y: y}, strings.Join(tokens[9:], " "), nil
}

func (b *base) SetNameTokens(tokens []string) error {
	p, text, err := parseTextRow(tokens)
	if err != nil {
		return err
	}
	if b.nameIdx >= 0 {
		b.points[b.nameIdx] = p
	}
	b.name = text
	return nil
}

// SetValueTokens also takes the font and size of the attached text from
// the row
func (b *base) SetValueTokens(tokens []string) error {
	p, text, err := parseTextRow(tokens)
	if err != nil {
		return err
	}
	size, err := parseInt(tokens[4], "font size")
	if err != nil {
		return err
	}
	if b.valueIdx >= 0 {
		b.points[b.valueIdx] = p
	}
	b.value = text
	b.font = fontFromToken(tokens[8])
	b.fontSize = max(size, 1)
	return nil
}

// checkDash clamps a dash style to the known ones
func checkDash(d int) int {
	return min(max(d, 0), DashNumber-1)
}

func parseInt(tok, field string) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	return v, nil
}

func parseFloat(tok, field string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	return v, nil
}

// parseCoords reads n integers starting at tokens[from]
func parseCoords(tokens []string, from, n int) ([]int, error) {
	v := make([]int, n)
	for i := range v {
		c, err := parseInt(tokens[from+i], "coordinate")
		if err != nil {
			return nil, err
		}
		v[i] = c
	}
	return v, nil
}

// roundIntelligently writes integral values without decimals
func roundIntelligently(v float64) string {
	const tolerance = 1e-5
	r := geom.Round(v)
	if abs(v-float64(r)) < tolerance {
		return strconv.Itoa(r)
	}
	return geom.FormatDouble(v)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func mapPoint(cs *geom.MapCoordinates, p geom.Point) (int, int) {
	return cs.MapX(float64(p.X), float64(p.Y)), cs.MapY(float64(p.X), float64(p.Y))
}
