package primitives

import (
	"fmt"
	"math"
	"strings"

	"github.com/OpenTraceLab/OpenTraceFCD/pkg/geom"
)

// Macro places a library symbol, "MC x y o m key". It is always on layer
// 0, the primitives of its body keep their own layers.
type Macro struct {
	base
	env   *Env
	o     int // quarter turns
	m     bool
	key   string
	desc  string
	inner []Primitive
}

func NewMacro(env *Env) *Macro {
	if env == nil {
		env = &Env{}
	}
	return &Macro{base: newBase(1, true, env.TextFont, env.TextFontSize), env: env}
}

func (m *Macro) Kind() Kind { return KindMacro }

// Key returns the lowercase library key
func (m *Macro) Key() string { return m.key }

// Description returns the drawing commands of the symbol
func (m *Macro) Description() string { return m.desc }

// Orientation returns the number of quarter turns
func (m *Macro) Orientation() int { return m.o }

func (m *Macro) Mirrored() bool { return m.m }

// Primitives returns the expanded body of the macro
func (m *Macro) Primitives() []Primitive { return m.inner }

func (m *Macro) SetLayer(int) {}

func (m *Macro) ParseTokens(tokens []string) error {
	nn := len(tokens)
	if nn < 6 {
		return fmt.Errorf("MC: %w", ErrTooFewTokens)
	}
	c, err := parseCoords(tokens, 1, 4)
	if err != nil {
		return fmt.Errorf("MC: %w", err)
	}
	m.points[0] = geom.Point{X: c[0], Y: c[1]}
	m.points[m.nameIdx] = geom.Point{X: c[0] + 10, Y: c[1] + 10}
	m.points[m.valueIdx] = geom.Point{X: c[0] + 10, Y: c[1] + 5}
	m.o = c[2]
	m.m = c[3] == 1
	m.key = strings.ToLower(strings.Join(tokens[5:], " "))

	desc, ok := m.env.Library.Lookup(m.key)
	if !ok {
		return fmt.Errorf("%w '%s'", ErrUnknownMacro, m.key)
	}
	m.desc = desc.Description
	return m.expand()
}

func (m *Macro) expand() error {
	m.inner = nil
	if m.env.Expand == nil {
		return nil
	}
	child, err := m.env.child()
	if err != nil {
		return fmt.Errorf("macro %s: %w", m.key, err)
	}
	inner, err := m.env.Expand(m.desc, child)
	if err != nil {
		return fmt.Errorf("macro %s: %w", m.key, err)
	}
	m.inner = inner
	return nil
}

func (m *Macro) String(extensions bool) string {
	p := m.points[0]
	mirror := 0
	if m.m {
		mirror = 1
	}
	return fmt.Sprintf("MC %d %d %d %d %s\n", p.X, p.Y, m.o, mirror, m.key) +
		m.saveText(extensions)
}

func (m *Macro) ContainsLayer(l int) bool {
	for _, p := range m.inner {
		if p.ContainsLayer(l) {
			return true
		}
	}
	return false
}

func (m *Macro) MaxLayer() int {
	ml := 0
	for _, p := range m.inner {
		ml = max(ml, p.MaxLayer())
	}
	return ml
}

// innerDistance is the smallest distance to a primitive of the body on a
// visible layer
func (m *Macro) innerDistance(px, py int) int {
	d := math.MaxInt
	for _, p := range m.inner {
		dp := p.Distance(px, py)
		if dp <= d && m.env.visible(p.Layer()) {
			d = dp
		}
	}
	return d
}

// toBody maps a point into the coordinate system of the macro body, where
// the insertion point sits at (100,100)
func (m *Macro) toBody(px, py int) (int, int) {
	p := m.points[0]
	dx, dy := px-p.X, py-p.Y
	if m.m {
		switch m.o {
		case 0:
			return -dx + geom.MacroOffset, dy + geom.MacroOffset
		case 1:
			return dy + geom.MacroOffset, dx + geom.MacroOffset
		case 2:
			return dx + geom.MacroOffset, -dy + geom.MacroOffset
		case 3:
			return -dy + geom.MacroOffset, -dx + geom.MacroOffset
		}
		return 0, 0
	}
	switch m.o {
	case 0:
		return dx + geom.MacroOffset, dy + geom.MacroOffset
	case 1:
		return dy + geom.MacroOffset, -dx + geom.MacroOffset
	case 2:
		return -dx + geom.MacroOffset, -dy + geom.MacroOffset
	case 3:
		return -dy + geom.MacroOffset, dx + geom.MacroOffset
	}
	return 0, 0
}

func (m *Macro) Distance(px, py int) int {
	if m.checkText(px, py) {
		return 0
	}
	if m.desc == "" {
		return math.MaxInt
	}
	return m.innerDistance(m.toBody(px, py))
}

// SelectRect only selects macros with something visible in their body
func (m *Macro) SelectRect(x, y, w, h int) bool {
	if m.innerDistance(0, 0) < math.MaxInt {
		return m.base.SelectRect(x, y, w, h)
	}
	return false
}

func (m *Macro) SetSelected(s bool) {
	m.base.SetSelected(s)
	for _, p := range m.inner {
		p.SetSelected(s)
	}
}

func (m *Macro) Rotate(ccw bool, cx, cy int) {
	m.base.Rotate(ccw, cx, cy)
	if ccw {
		m.o = (m.o + 3) % 4
	} else {
		m.o = (m.o + 1) % 4
	}
}

func (m *Macro) Mirror(xPos int) {
	m.base.Mirror(xPos)
	m.m = !m.m
}

func (m *Macro) frame(cs *geom.MapCoordinates) *geom.MapCoordinates {
	p := m.points[0]
	return cs.MacroFrame(float64(p.X), float64(p.Y), m.o, m.m)
}

func (m *Macro) Track(cs *geom.MapCoordinates) {
	m.trackText(cs)
	child := m.frame(cs)
	for _, p := range m.inner {
		if m.env.visible(p.Layer()) || p.Kind() == KindMacro {
			p.Track(child)
		}
	}
	cs.MergeBounds(child)
}

func (m *Macro) Export(cs *geom.MapCoordinates, e *Exporter) error {
	x, y := mapPoint(cs, m.points[0])
	xn, yn := mapPoint(cs, m.points[m.nameIdx])
	xv, yv := mapPoint(cs, m.points[m.valueIdx])
	fs := float64(m.fontSize)
	size := int(cs.MapYr(fs, fs) - cs.MapYr(0, 0))

	done, err := e.ExportMacro(x, y, m.m, m.o*90, m.key, m.name, xn, yn,
		m.value, xv, yv, m.font, size)
	if err != nil || done {
		return err
	}

	child := m.frame(cs)
	for _, p := range m.inner {
		if !m.env.visible(p.Layer()) && p.Kind() != KindMacro {
			continue
		}
		if err := p.Export(child, e); err != nil {
			return err
		}
	}
	return m.exportText(cs, e)
}
